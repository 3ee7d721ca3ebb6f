package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookjournal/src/internal/httpx"
	"bookjournal/src/internal/names"
	"bookjournal/src/internal/schema"
	"bookjournal/src/internal/stringsx"
)

// DefaultRakutenURL is the Rakuten Books book search endpoint.
const DefaultRakutenURL = "https://app.rakuten.co.jp/services/api/BooksBook/Search/20170404"

// Rakuten searches Rakuten Books by title, or by ISBN when the query is one.
type Rakuten struct {
	appID    string
	endpoint string
	hits     int
	client   httpx.Doer
}

// NewRakuten returns a Rakuten Books client. Empty endpoint and non-positive
// hits fall back to defaults.
func NewRakuten(appID, endpoint string, hits int, client httpx.Doer) *Rakuten {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultRakutenURL
	}
	if hits <= 0 || hits > 30 {
		hits = 30
	}
	return &Rakuten{appID: appID, endpoint: endpoint, hits: hits, client: client}
}

type rakutenResp struct {
	Items []rakutenItem `json:"Items"`
	Error string        `json:"error"`
}

type rakutenItem struct {
	Title          string `json:"title"`
	Author         string `json:"author"`
	PublisherName  string `json:"publisherName"`
	ISBN           string `json:"isbn"`
	ItemCaption    string `json:"itemCaption"`
	SalesDate      string `json:"salesDate"`
	LargeImageURL  string `json:"largeImageUrl"`
	MediumImageURL string `json:"mediumImageUrl"`
	ItemURL        string `json:"itemUrl"`
}

// Search implements Client.
func (c *Rakuten) Search(ctx context.Context, query string) ([]schema.RawBook, error) {
	q := url.Values{}
	if isbn, ok := isISBN(query); ok {
		q.Set("isbn", isbn)
	} else {
		q.Set("title", query)
	}
	return c.do(ctx, q)
}

// Lookup implements Resolver; Rakuten ids are ISBNs.
func (c *Rakuten) Lookup(ctx context.Context, id string) (schema.RawBook, error) {
	isbn, ok := isISBN(id)
	if !ok {
		return schema.RawBook{}, ErrNotFound
	}
	q := url.Values{}
	q.Set("isbn", isbn)
	raws, err := c.do(ctx, q)
	if err != nil {
		return schema.RawBook{}, err
	}
	for _, r := range raws {
		if r.ID == isbn {
			return r, nil
		}
	}
	return schema.RawBook{}, ErrNotFound
}

func (c *Rakuten) do(ctx context.Context, q url.Values) ([]schema.RawBook, error) {
	req, err := c.buildRequest(ctx, q)
	if err != nil {
		return nil, &Error{Provider: ProviderRakuten, Kind: KindNetwork, Err: err}
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Provider: ProviderRakuten, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(ProviderRakuten, resp)
	}
	var r rakutenResp
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, &Error{Provider: ProviderRakuten, Kind: KindMalformed, Err: err}
	}
	if r.Error != "" {
		return nil, &Error{Provider: ProviderRakuten, Kind: KindMalformed, Err: fmt.Errorf("api error: %s", r.Error)}
	}
	out := make([]schema.RawBook, 0, len(r.Items))
	for _, it := range r.Items {
		if rb, ok := mapRakutenItem(it); ok {
			out = append(out, rb)
		}
	}
	return out, nil
}

func (c *Rakuten) buildRequest(ctx context.Context, q url.Values) (*http.Request, error) {
	q.Set("applicationId", c.appID)
	q.Set("format", "json")
	q.Set("formatVersion", "2")
	q.Set("hits", strconv.Itoa(c.hits))
	q.Set("outOfStockFlag", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	httpx.SetUA(req)
	return req, nil
}

func mapRakutenItem(it rakutenItem) (schema.RawBook, bool) {
	isbn := strings.TrimSpace(it.ISBN)
	if isbn == "" {
		return schema.RawBook{}, false
	}
	return schema.RawBook{
		ID:            isbn,
		Title:         strings.TrimSpace(it.Title),
		Author:        names.Join(names.Split(it.Author)),
		PublisherName: strings.TrimSpace(it.PublisherName),
		Description:   strings.TrimSpace(it.ItemCaption),
		ImageURL:      stringsx.FirstNonEmpty(it.LargeImageURL, it.MediumImageURL),
		PublishDate:   strings.TrimSpace(it.SalesDate),
		ISBN:          isbn,
		Source:        ProviderRakuten,
	}, true
}
