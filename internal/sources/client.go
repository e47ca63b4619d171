package sources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/user/catalogs/internal/catalog"
	"resty.dev/v3"
)

// Endpoint is the per-catalog part of a search: how to shape the request,
// where the records live in the response and how each record maps to an Item.
type Endpoint struct {
	Kind    catalog.Kind
	Path    string
	Prepare func(r *resty.Request, query string, opts Options)
	Extract func(body []byte) ([]json.RawMessage, error)
	Map     func(raw json.RawMessage) (catalog.Item, error)
}

// Client is the generic remote catalog client. It issues exactly one GET per
// Fetch, never retries and never caches.
type Client struct {
	endpoint Endpoint
	http     *resty.Client
}

func NewClient(ep Endpoint, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "catalogs/1.0")

	return &Client{endpoint: ep, http: http}
}

func (c *Client) Kind() catalog.Kind {
	return c.endpoint.Kind
}

func (c *Client) Fetch(ctx context.Context, query string, opts Options) ([]json.RawMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, catalog.ErrEmptyQuery
	}

	req := c.http.R().SetContext(ctx)
	c.endpoint.Prepare(req, query, opts)

	resp, err := req.Get(c.endpoint.Path)
	if err != nil {
		return nil, &catalog.FetchError{Kind: catalog.FetchTransport, Message: err.Error(), Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &catalog.FetchError{
			Kind:    catalog.FetchStatus,
			Message: fmt.Sprintf("HTTP error: %d %s", resp.StatusCode(), resp.Status()),
		}
	}

	records, err := c.endpoint.Extract([]byte(resp.String()))
	if err != nil {
		var fe *catalog.FetchError
		if errors.As(err, &fe) {
			return nil, fe
		}
		return nil, &catalog.FetchError{Kind: catalog.FetchShape, Message: err.Error(), Err: err}
	}
	return records, nil
}

func (c *Client) Map(raw json.RawMessage) (catalog.Item, error) {
	return c.endpoint.Map(raw)
}

// Close releases the underlying HTTP transport.
func (c *Client) Close() error {
	return c.http.Close()
}

// decodeRecord unmarshals raw into dto, turning type mismatches into a MappingError
// naming the offending field.
func decodeRecord(kind catalog.Kind, raw json.RawMessage, dto interface{}) error {
	if err := json.Unmarshal(raw, dto); err != nil {
		field := "record"
		var te *json.UnmarshalTypeError
		if errors.As(err, &te) && te.Field != "" {
			field = te.Field
		}
		return &catalog.MappingError{Kind: kind, Field: field, Err: err}
	}
	return nil
}

// required returns the value of a decoded field, or a MappingError when it was absent.
func required(kind catalog.Kind, field string, v *string) (string, error) {
	if v == nil {
		return "", &catalog.MappingError{Kind: kind, Field: field}
	}
	return *v, nil
}
