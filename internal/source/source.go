// Package source fetches the transaction collection over HTTP.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bix-dev/bixdash/internal/model"
)

// ErrFetchFailed wraps every failure to obtain the collection.
var ErrFetchFailed = errors.New("failed to load transactions")

// FetchError reports an unexpected HTTP status.
type FetchError struct {
	Status int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", ErrFetchFailed, e.Status)
}

func (e *FetchError) Unwrap() error { return ErrFetchFailed }

// Mode selects the cache directives sent with a request.
type Mode int

const (
	// ModeDefault lets intermediaries answer from their caches.
	ModeDefault Mode = iota
	// ModeRevalidate forces the origin to validate, sending the known
	// entity tag as a precondition.
	ModeRevalidate
	// ModeReload asks for a full response, bypassing every cache.
	ModeReload
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeRevalidate:
		return "no-cache"
	case ModeReload:
		return "reload"
	default:
		return "*unknown*"
	}
}

// Request describes one fetch.
type Request struct {
	Mode Mode
	ETag string // only sent with ModeRevalidate
}

// Response is the outcome of a successful fetch. When NotModified is
// set, Transactions is nil and the caller's copy is current.
type Response struct {
	NotModified  bool
	Transactions []model.Transaction
	ETag         string
}

// Fetcher is implemented by Client and by test fakes.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// DefaultPath is where the collection is published.
const DefaultPath = "/transactions.json"

// Client fetches transactions.json from a base URL.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient returns a Client for baseURL. A baseURL without a path gets
// DefaultPath appended. A zero timeout means none.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing source url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("source url %q must be absolute", baseURL)
	}
	if u.Path == "" || u.Path == "/" {
		u.Path = DefaultPath
	}
	return &Client{
		endpoint:   u.String(),
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Endpoint returns the URL requests are sent to.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch performs one GET under req's mode.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Response{}, fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	switch req.Mode {
	case ModeRevalidate:
		httpReq.Header.Set("Cache-Control", "no-cache")
		if req.ETag != "" {
			httpReq.Header.Set("If-None-Match", req.ETag)
		}
	case ModeReload:
		httpReq.Header.Set("Cache-Control", "no-cache")
		httpReq.Header.Set("Pragma", "no-cache")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified {
		return Response{NotModified: true, ETag: resp.Header.Get("ETag")}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &FetchError{Status: resp.StatusCode}
	}

	var txns []model.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txns); err != nil {
		return Response{}, fmt.Errorf("%w: decoding body: %w", ErrFetchFailed, err)
	}
	if txns == nil {
		txns = []model.Transaction{}
	}
	return Response{Transactions: txns, ETag: strings.TrimSpace(resp.Header.Get("ETag"))}, nil
}
