package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"bookjournal/src/internal/httpx"
	"bookjournal/src/internal/names"
	"bookjournal/src/internal/schema"
)

// ProviderOpenBD names the openBD ISBN resolver.
const ProviderOpenBD = "openbd"

// DefaultOpenBDURL is the openBD bulk get endpoint.
const DefaultOpenBDURL = "https://api.openbd.jp/v1/get"

// OpenBD resolves Japanese ISBNs through openBD. It cannot search by title,
// so it only serves as a Resolver.
type OpenBD struct {
	endpoint string
	client   httpx.Doer
}

// NewOpenBD returns an openBD resolver.
func NewOpenBD(endpoint string, client httpx.Doer) *OpenBD {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOpenBDURL
	}
	return &OpenBD{endpoint: endpoint, client: client}
}

type openBDRecord struct {
	Summary struct {
		ISBN      string `json:"isbn"`
		Title     string `json:"title"`
		Volume    string `json:"volume"`
		Series    string `json:"series"`
		Publisher string `json:"publisher"`
		Pubdate   string `json:"pubdate"`
		Cover     string `json:"cover"`
		Author    string `json:"author"`
	} `json:"summary"`
}

// Lookup implements Resolver. Ids that are not ISBNs are never found.
func (c *OpenBD) Lookup(ctx context.Context, id string) (schema.RawBook, error) {
	isbn, ok := isISBN(id)
	if !ok {
		return schema.RawBook{}, ErrNotFound
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?isbn="+url.QueryEscape(isbn), nil)
	if err != nil {
		return schema.RawBook{}, &Error{Provider: ProviderOpenBD, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	httpx.SetUA(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return schema.RawBook{}, &Error{Provider: ProviderOpenBD, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return schema.RawBook{}, statusError(ProviderOpenBD, resp)
	}
	// openBD answers [null] for unknown ISBNs.
	var arr []*openBDRecord
	if err := json.NewDecoder(resp.Body).Decode(&arr); err != nil {
		return schema.RawBook{}, &Error{Provider: ProviderOpenBD, Kind: KindMalformed, Err: err}
	}
	if len(arr) == 0 || arr[0] == nil || strings.TrimSpace(arr[0].Summary.Title) == "" {
		return schema.RawBook{}, ErrNotFound
	}
	s := arr[0].Summary
	title := strings.TrimSpace(s.Title)
	if v := strings.TrimSpace(s.Volume); v != "" {
		title += " " + v
	}
	return schema.RawBook{
		ID:            isbn,
		Title:         title,
		Author:        openBDAuthors(s.Author),
		PublisherName: strings.TrimSpace(s.Publisher),
		ImageURL:      strings.TrimSpace(s.Cover),
		PublishDate:   strings.TrimSpace(s.Pubdate),
		ISBN:          isbn,
		Source:        ProviderOpenBD,
	}, nil
}

// openBDAuthors turns "カント／著 篠田英雄／訳" into "カント、篠田英雄".
func openBDAuthors(s string) string {
	return names.Join(strings.Fields(s))
}
