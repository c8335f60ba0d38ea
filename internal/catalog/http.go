// apps/go-server/internal/catalog/http.go
//
// HTTP implementation of Client against a PokeAPI-compatible service.
//
// Wire format (GET {baseURL}/{id}):
//   { "id": 25, "name": "pikachu", "sprites": { "front_default": "https://..." } }
//
// Retry policy:
//   - Network errors, 429 and 5xx responses are retried with exponential backoff.
//   - Any other non-200 status and undecodable bodies fail immediately.
//   - Each Fetch runs inside an OpenTelemetry span.

package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultBaseURL is the public PokeAPI endpoint.
	DefaultBaseURL = "https://pokeapi.co/api/v2/pokemon"

	defaultTimeout = 5 * time.Second
	defaultTries   = 3
)

var tracer = otel.Tracer("github.com/robalobadob/pokesimon/apps/go-server/internal/catalog")

// HTTPClient fetches creatures over HTTP.
type HTTPClient struct {
	baseURL    string
	http       *http.Client
	tries      uint
	newBackOff func() backoff.BackOff
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default *http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithTries sets the maximum number of attempts per lookup (minimum 1).
func WithTries(n uint) Option {
	return func(c *HTTPClient) {
		if n == 0 {
			n = 1
		}
		c.tries = n
	}
}

// WithBackOff overrides the wait strategy between attempts.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(c *HTTPClient) { c.newBackOff = f }
}

// NewHTTPClient builds a client rooted at baseURL (DefaultBaseURL if empty).
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		tries:   defaultTries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 200 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Fetch implements Client.
func (c *HTTPClient) Fetch(ctx context.Context, id int) (Creature, error) {
	ctx, span := tracer.Start(ctx, "catalog.Fetch", trace.WithAttributes(attribute.Int("creature.id", id)))
	defer span.End()

	cr, err := backoff.Retry(ctx, func() (Creature, error) {
		return c.fetchOnce(ctx, id)
	}, backoff.WithBackOff(c.newBackOff()), backoff.WithMaxTries(c.tries))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Creature{}, fmt.Errorf("%w: creature %d: %w", ErrUnavailable, id, err)
	}
	return cr, nil
}

// pokemonDoc is the subset of the PokeAPI document we read.
type pokemonDoc struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Sprites struct {
		FrontDefault string `json:"front_default"`
	} `json:"sprites"`
}

// fetchOnce performs a single attempt. Errors wrapped in backoff.Permanent stop the retry loop.
func (c *HTTPClient) fetchOnce(ctx context.Context, id int) (Creature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+strconv.Itoa(id), nil)
	if err != nil {
		return Creature{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return Creature{}, backoff.Permanent(err)
		}
		return Creature{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return Creature{}, fmt.Errorf("status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Creature{}, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}

	var doc pokemonDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Creature{}, backoff.Permanent(fmt.Errorf("decode: %w", err))
	}
	if doc.ID == 0 {
		doc.ID = id
	}
	return Creature{ID: doc.ID, Name: doc.Name, ImageURL: doc.Sprites.FrontDefault}, nil
}
