// Package client reads the menu and restaurant info from the menu API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"menuboard/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	MenuPath           = "/api/menu"
	RestaurantInfoPath = "/api/restaurant-info"

	RequestIDHeader = "X-Request-ID"
	userAgent       = "menuboard/1.0"
)

// Payload is the joined result of one successful load.
type Payload struct {
	Items []models.MenuItem
	Info  models.RestaurantInfo
}

// APIClient handles requests to the menu API
type APIClient struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// Option configures an APIClient.
type Option func(*APIClient)

// WithHTTPClient replaces the default transport.
func WithHTTPClient(c *http.Client) Option {
	return func(a *APIClient) { a.httpClient = c }
}

// WithTimeout sets an overall per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(a *APIClient) {
		if d > 0 {
			a.httpClient = &http.Client{Transport: a.httpClient.Transport, Timeout: d}
		}
	}
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(a *APIClient) { a.log = log }
}

// NewAPIClient creates a client for the API rooted at baseURL.
func NewAPIClient(baseURL string, opts ...Option) *APIClient {
	c := &APIClient{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client was built with.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Load fetches the menu and the restaurant info concurrently. It succeeds only
// if both reads succeed; the first failure cancels the other read and is
// returned as a *LoadError.
func (c *APIClient) Load(ctx context.Context) (*Payload, error) {
	ctx = withRequestID(ctx, uuid.NewString())

	var (
		items []models.MenuItem
		info  models.RestaurantInfo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		items, err = c.FetchMenu(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		info, err = c.FetchRestaurantInfo(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, &LoadError{Err: err}
	}

	return &Payload{Items: items, Info: info}, nil
}

// FetchMenu retrieves all menu items in the order the API lists them
func (c *APIClient) FetchMenu(ctx context.Context) ([]models.MenuItem, error) {
	body, err := c.get(ctx, MenuPath)
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, &SchemaError{Endpoint: MenuPath, Err: errors.New("expected a JSON array")}
	}

	var items []models.MenuItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &SchemaError{Endpoint: MenuPath, Err: err}
	}

	for i := range items {
		if err := models.ValidateMenuItem(&items[i]); err != nil {
			return nil, &SchemaError{Endpoint: MenuPath, Err: fmt.Errorf("item %d: %w", i, err)}
		}
	}

	return items, nil
}

// FetchRestaurantInfo retrieves the restaurant info object without interpreting it
func (c *APIClient) FetchRestaurantInfo(ctx context.Context) (models.RestaurantInfo, error) {
	body, err := c.get(ctx, RestaurantInfoPath)
	if err != nil {
		return models.RestaurantInfo{}, err
	}

	info, err := models.NewRestaurantInfo(body)
	if err != nil {
		return models.RestaurantInfo{}, &SchemaError{Endpoint: RestaurantInfoPath, Err: err}
	}

	return info, nil
}

// get performs a GET and returns the body of a 2xx response.
func (c *APIClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if id, ok := requestIDFrom(ctx); ok {
		req.Header.Set(RequestIDHeader, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", req.Header.Get(RequestIDHeader)).
		Msg("menu api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{Endpoint: path, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Endpoint: path, Err: fmt.Errorf("read body: %w", err)}
	}

	return body, nil
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok
}
