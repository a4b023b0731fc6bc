// Package zoningclient resolves parcels through a remote urbanmind server.
package zoningclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/PhelelaniM/UrbanMind/internal/lookup"
	"github.com/PhelelaniM/UrbanMind/internal/parcel"
	"github.com/PhelelaniM/UrbanMind/internal/resilience"
)

const lookupPath = "/get_information"

// Option configures the client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRateLimit caps outbound requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithRetry retries transient failures (network errors, 408, 429 and 5xx)
// under p. The default makes a single attempt.
func WithRetry(p resilience.Policy) Option {
	return func(c *Client) {
		if p.OnRetry == nil {
			p.OnRetry = resilience.RetryLogger("zoningclient", "lookup")
		}
		c.retry = p
	}
}

// Client calls the lookup endpoint of a running server. It satisfies
// parcel.Resolver, so the server's collection becomes the source of truth.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.Policy
}

var _ parcel.Resolver = (*Client)(nil)

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		retry:      resilience.NoRetry(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup posts req and decodes the envelope. Lookup failures reported by the
// server come back in the Response; only transport problems are errors, and
// those wrap parcel.ErrTransport.
func (c *Client) Lookup(ctx context.Context, req lookup.Request) (*lookup.Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, eris.Wrap(err, "zoningclient: encode request")
	}

	return resilience.Retry(ctx, c.retry, func(ctx context.Context) (*lookup.Response, error) {
		return c.post(ctx, body)
	})
}

// post makes one attempt. Retryable failures carry the resilience marker.
func (c *Client) post(ctx context.Context, body []byte) (*lookup.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrapf(parcel.ErrTransport, "zoningclient: rate limit: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+lookupPath, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(parcel.ErrTransport, "zoningclient: build request: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, resilience.Transient(eris.Wrapf(parcel.ErrTransport, "zoningclient: request: %v", err), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		err := eris.Wrapf(parcel.ErrTransport, "zoningclient: server returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.Transient(err, resp.StatusCode)
		}
		return nil, err
	}

	var out lookup.Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, eris.Wrapf(parcel.ErrTransport, "zoningclient: decode response: %v", err)
	}
	return &out, nil
}

// ResolveByKey implements parcel.Resolver.
func (c *Client) ResolveByKey(ctx context.Context, key string) (*parcel.Result, error) {
	return c.resolve(ctx, lookup.KeyRequest(key))
}

// ResolveByCoordinates implements parcel.Resolver.
func (c *Client) ResolveByCoordinates(ctx context.Context, lat, lng float64) (*parcel.Result, error) {
	raw := strconv.FormatFloat(lat, 'f', -1, 64) + ", " + strconv.FormatFloat(lng, 'f', -1, 64)
	return c.resolve(ctx, lookup.CoordinatesRequest(raw))
}

func (c *Client) resolve(ctx context.Context, req lookup.Request) (*parcel.Result, error) {
	resp, err := c.Lookup(ctx, req)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, remoteError(resp)
	}
	if resp.Location == nil {
		return nil, eris.Wrap(parcel.ErrTransport, "zoningclient: success without location")
	}

	res := &parcel.Result{
		Location:        *resp.Location,
		ZoneCode:        resp.ZoneCode,
		ZoneDescription: resp.ZoneDescription,
	}
	if resp.ParcelKey != "" {
		if k, err := strconv.ParseInt(resp.ParcelKey, 10, 64); err == nil {
			res.ParcelKey = &k
		}
	}
	return res, nil
}

// remoteError rebuilds the resolver error kind from the wire error code.
func remoteError(resp *lookup.Response) error {
	switch resp.ErrorCode {
	case lookup.CodeNotFound:
		return eris.Wrapf(parcel.ErrNotFound, "zoningclient: %s", resp.Error)
	case lookup.CodeInvalidInput:
		return eris.Wrapf(parcel.ErrInvalidInput, "zoningclient: %s", resp.Error)
	default:
		zap.L().Warn("zoningclient: remote lookup failed",
			zap.String("error_code", string(resp.ErrorCode)),
			zap.String("error", resp.Error),
		)
		return eris.Wrapf(parcel.ErrTransport, "zoningclient: %s", resp.Error)
	}
}

// Health is the body of the server's health route.
type Health struct {
	Status  string `json:"status"`
	Parcels int    `json:"parcels"`
}

// Health checks the server is up and reports how many parcels it serves.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, eris.Wrap(err, "zoningclient: build health request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(parcel.ErrTransport, "zoningclient: health: %v", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Wrapf(parcel.ErrTransport, "zoningclient: health returned status %d", resp.StatusCode)
	}

	var h Health
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return nil, eris.Wrap(err, "zoningclient: decode health")
	}
	return &h, nil
}
