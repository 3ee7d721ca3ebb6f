package httpx

import (
    "io"
    "net/http"
    "strings"
    "time"
)

// Doer is the minimal HTTP client interface used across packages.
type Doer interface {
    Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// UserAgent identifies this client to catalog providers.
const UserAgent = "bookjournal/1.0 (+https://github.com/bookjournal/bookjournal)"

// SetUA sets the UserAgent header on the request.
func SetUA(req *http.Request) {
    if req != nil {
        req.Header.Set("User-Agent", UserAgent)
    }
}

// NewClient returns an *http.Client with the given overall timeout.
func NewClient(timeout time.Duration) *http.Client {
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    return &http.Client{Timeout: timeout}
}

// Snippet reads at most 4KiB of the body for error messages.
func Snippet(resp *http.Response) string {
    if resp == nil || resp.Body == nil {
        return ""
    }
    b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
    return strings.TrimSpace(string(b))
}
