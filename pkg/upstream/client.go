package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kaizerhaus/kaizerhaus-backend/pkg/config"
	pkgerrors "github.com/kaizerhaus/kaizerhaus-backend/pkg/errors"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/logger"
	"github.com/kaizerhaus/kaizerhaus-backend/pkg/metrics"
)

var (
	errBaseURLRequired = errors.New("upstream base url is required")
	errLoggerRequired  = errors.New("upstream logger is required")
)

const maxErrorBodyBytes = 64 << 10

// Client wraps the restaurant backend's REST API with centralized auth
// headers, logging, metrics, and error normalization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
	metrics    *metrics.UpstreamMetrics
}

// NewClient initializes the wrapper and validates the configuration.
func NewClient(cfg config.UpstreamConfig, logg *logger.Logger, mtr *metrics.UpstreamMetrics) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logg,
		metrics:    mtr,
	}, nil
}

// AuthHeader normalizes a raw token into an Authorization header value.
// Tokens that already carry a bearer prefix are passed through untouched.
func AuthHeader(token string) string {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(trimmed), "bearer ") {
		return trimmed
	}
	return "Bearer " + trimmed
}

func (c *Client) get(ctx context.Context, op, path, token string, out any) error {
	return c.do(ctx, op, http.MethodGet, path, token, nil, out)
}

func (c *Client) post(ctx context.Context, op, path, token string, body, out any) error {
	return c.do(ctx, op, http.MethodPost, path, token, body, out)
}

func (c *Client) patch(ctx context.Context, op, path, token string, body, out any) error {
	return c.do(ctx, op, http.MethodPatch, path, token, body, out)
}

func (c *Client) do(ctx context.Context, op, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("encoding %s request", op))
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("building %s request", op))
	}
	req.Header.Set("Content-Type", "application/json")
	if header := AuthHeader(token); header != "" {
		req.Header.Set("Authorization", header)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.IncFailure(op)
		c.logError(ctx, op, err)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("calling restaurant backend: %s", op))
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(op, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		normalized := normalizeError(op, resp.StatusCode, resp.Header.Get("Content-Type"), raw)
		c.logError(ctx, op, normalized)
		return normalized
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logError(ctx, op, err)
		return pkgerrors.Wrap(pkgerrors.CodeUpstream, err, fmt.Sprintf("decoding %s response", op))
	}
	return nil
}

func (c *Client) logError(ctx context.Context, op string, err error) {
	if c.logger == nil {
		return
	}
	ctx = c.logger.WithField(ctx, "operation", op)
	c.logger.Error(ctx, "restaurant backend call failed", err)
}
