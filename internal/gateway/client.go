// Package gateway wraps outbound calls to the remote POS API.
//
// Every call re-fetches; there is no caching and no retry. List calls always
// return a non-nil slice: an absent or malformed {data} envelope collapses to
// an empty result instead of an error.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the public POS API.
const DefaultBaseURL = "https://web-pos-back-end.vercel.app/api"

// Recorder receives one observation per outbound request.
type Recorder interface {
	ObserveFetch(resource, status string, elapsed time.Duration)
}

// Options configure a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
	Metrics    Recorder
	// Location reads timestamps the API sends without a zone. Nil means UTC.
	Location *time.Location
}

// Client calls the POS API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
	metrics Recorder
	loc     *time.Location
}

// New constructs a Client. A nil HTTPClient uses http.DefaultClient, which
// keeps the transport's default timeout behaviour.
func New(opts Options) *Client {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		http:    httpClient,
		logger:  logger.With(slog.String("component", "gateway")),
		metrics: opts.Metrics,
		loc:     loc,
	}
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type call struct {
	op       string
	resource string
	method   string
	path     string
	query    url.Values
	body     any
}

// response is a decoded 2xx reply.
type response struct {
	status int
	data   json.RawMessage
}

func (c *Client) do(ctx context.Context, cl call) (response, error) {
	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return response{}, fmt.Errorf("gateway: %s: encode body: %w", cl.op, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, body)
	if err != nil {
		return response{}, fmt.Errorf("gateway: %s: %w", cl.op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl.resource, "error", start)
		return response{}, fmt.Errorf("gateway: %s: %w", cl.op, err)
	}
	defer resp.Body.Close()
	c.observe(cl.resource, strconv.Itoa(resp.StatusCode), start)

	logger := c.logger.With(
		slog.String("op", cl.op),
		slog.String("method", cl.method),
		slog.String("path", cl.path),
		slog.Int("status", resp.StatusCode),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			logger.Info("pos api not found")
		} else {
			logger.Warn("pos api error")
		}
		return response{status: resp.StatusCode}, &RetrievalError{
			Op:         cl.op,
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: resp.StatusCode,
		}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("gateway: %s: read body: %w", cl.op, err)
	}
	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			logger.Warn("pos api malformed envelope", slog.Any("error", err))
			env.Data = nil
		}
	}
	logger.Debug("pos api request", slog.Duration("elapsed", time.Since(start)))
	return response{status: resp.StatusCode, data: env.Data}, nil
}

func (c *Client) observe(resource, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveFetch(resource, status, time.Since(start))
}

// lookup runs a single-record call where 404 is a valid "not found" outcome.
// found is false on 404.
func (c *Client) lookup(ctx context.Context, cl call) (data json.RawMessage, found bool, err error) {
	resp, err := c.do(ctx, cl)
	if err != nil {
		if resp.status == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return resp.data, true, nil
}

func (c *Client) logSkipped(op string, skipped int) {
	if skipped > 0 {
		c.logger.Warn("skipped malformed records", slog.String("op", op), slog.Int("count", skipped))
	}
}

// segment escapes a path segment the way browsers' encodeURIComponent does
// for reserved characters, so & = + : @ $ reach the API encoded.
func segment(value string) string {
	return strings.ReplaceAll(url.QueryEscape(value), "+", "%20")
}

func idSegment(id int64) string {
	return strconv.FormatInt(id, 10)
}
