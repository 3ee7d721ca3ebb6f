package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bookjournal/src/internal/httpx"
	"bookjournal/src/internal/names"
	"bookjournal/src/internal/schema"
	"bookjournal/src/internal/stringsx"
)

// DefaultGoogleURL is the Google Books volumes collection.
const DefaultGoogleURL = "https://www.googleapis.com/books/v1/volumes"

// Google searches Google Books restricted to Japanese-language volumes.
type Google struct {
	apiKey   string
	endpoint string
	hits     int
	client   httpx.Doer
}

// NewGoogle returns a Google Books client. The API key is optional.
func NewGoogle(apiKey, endpoint string, hits int, client httpx.Doer) *Google {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultGoogleURL
	}
	if hits <= 0 || hits > 40 {
		hits = 40
	}
	return &Google{apiKey: apiKey, endpoint: strings.TrimRight(endpoint, "/"), hits: hits, client: client}
}

type gBooksResp struct {
	Items []gItem `json:"items"`
}

type gItem struct {
	ID         string  `json:"id"`
	VolumeInfo gVolume `json:"volumeInfo"`
}

type gVolume struct {
	Title               string   `json:"title"`
	Subtitle            string   `json:"subtitle"`
	Authors             []string `json:"authors"`
	Publisher           string   `json:"publisher"`
	PublishedDate       string   `json:"publishedDate"`
	Description         string   `json:"description"`
	IndustryIdentifiers []struct {
		Type       string `json:"type"`
		Identifier string `json:"identifier"`
	} `json:"industryIdentifiers"`
	ImageLinks struct {
		Thumbnail      string `json:"thumbnail"`
		SmallThumbnail string `json:"smallThumbnail"`
	} `json:"imageLinks"`
}

// Search implements Client.
func (c *Google) Search(ctx context.Context, query string) ([]schema.RawBook, error) {
	q := url.Values{}
	if isbn, ok := isISBN(query); ok {
		q.Set("q", "isbn:"+isbn)
	} else {
		q.Set("q", query)
	}
	q.Set("langRestrict", "ja")
	q.Set("printType", "books")
	q.Set("maxResults", strconv.Itoa(c.hits))
	var r gBooksResp
	if err := c.get(ctx, c.endpoint, q, &r); err != nil {
		return nil, err
	}
	out := make([]schema.RawBook, 0, len(r.Items))
	for _, it := range r.Items {
		if rb, ok := mapGoogleItem(it); ok {
			out = append(out, rb)
		}
	}
	return out, nil
}

// Lookup implements Resolver using the volume endpoint.
func (c *Google) Lookup(ctx context.Context, id string) (schema.RawBook, error) {
	var it gItem
	err := c.get(ctx, c.endpoint+"/"+url.PathEscape(id), url.Values{}, &it)
	if err != nil {
		var ce *Error
		if errors.As(err, &ce) && ce.Status == http.StatusNotFound {
			return schema.RawBook{}, ErrNotFound
		}
		return schema.RawBook{}, err
	}
	rb, ok := mapGoogleItem(it)
	if !ok {
		return schema.RawBook{}, ErrNotFound
	}
	return rb, nil
}

func (c *Google) get(ctx context.Context, endpoint string, q url.Values, v any) error {
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Provider: ProviderGoogle, Kind: KindNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	httpx.SetUA(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return &Error{Provider: ProviderGoogle, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError(ProviderGoogle, resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &Error{Provider: ProviderGoogle, Kind: KindMalformed, Err: err}
	}
	return nil
}

func mapGoogleItem(it gItem) (schema.RawBook, bool) {
	id := strings.TrimSpace(it.ID)
	if id == "" {
		return schema.RawBook{}, false
	}
	v := it.VolumeInfo
	title := strings.TrimSpace(v.Title)
	if s := strings.TrimSpace(v.Subtitle); s != "" && title != "" {
		title += " " + s
	}
	var isbn10, isbn13 string
	for _, ident := range v.IndustryIdentifiers {
		switch ident.Type {
		case "ISBN_13":
			isbn13 = ident.Identifier
		case "ISBN_10":
			isbn10 = ident.Identifier
		}
	}
	return schema.RawBook{
		ID:            id,
		Title:         title,
		Author:        names.Join(v.Authors),
		PublisherName: strings.TrimSpace(v.Publisher),
		Description:   strings.TrimSpace(v.Description),
		ImageURL:      httpsImage(stringsx.FirstNonEmpty(v.ImageLinks.Thumbnail, v.ImageLinks.SmallThumbnail)),
		PublishDate:   strings.TrimSpace(v.PublishedDate),
		ISBN:          stringsx.FirstNonEmpty(isbn13, isbn10),
		Source:        ProviderGoogle,
	}, true
}

// httpsImage upgrades the http thumbnails Google still returns.
func httpsImage(u string) string {
	if strings.HasPrefix(u, "http://") {
		return "https://" + strings.TrimPrefix(u, "http://")
	}
	return u
}
