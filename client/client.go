package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"time"

	"github.com/arloliu/fluxline/compress"
	"github.com/arloliu/fluxline/errs"
	"github.com/arloliu/fluxline/internal/pool"
)

// backoffCapFactor bounds the exponential backoff growth at 16x the
// configured initial backoff.
const backoffCapFactor = 16

// Client writes line-protocol payloads to an InfluxDB v1 /write endpoint.
//
// A Client is safe for concurrent use; it keeps no per-write state beyond
// the shared http.Client.
type Client struct {
	cfg      Config
	httpc    *http.Client
	writeURL string
	pingURL  string
	gzip     compress.GzipCompressor
	logger   *slog.Logger
}

// New creates a write client from cfg. The configuration is validated
// (and its zero values normalized) before use. A nil logger falls back
// to slog.Default().
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	base, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%w: url: %s", errs.ErrInvalidConfig, err)
	}

	params := url.Values{}
	params.Set("db", cfg.Database)
	params.Set("precision", "ns")
	if cfg.RetentionPolicy != "" {
		params.Set("rp", cfg.RetentionPolicy)
	}
	if cfg.Consistency != "" {
		params.Set("consistency", cfg.Consistency)
	}

	writeURL := *base
	writeURL.Path, err = url.JoinPath(writeURL.Path, "write")
	if err != nil {
		return nil, fmt.Errorf("%w: url: %s", errs.ErrInvalidConfig, err)
	}
	writeURL.RawQuery = params.Encode()

	pingURL := *base
	pingURL.Path, _ = url.JoinPath(base.Path, "ping")
	pingURL.RawQuery = ""

	return &Client{
		cfg:      cfg,
		httpc:    &http.Client{Timeout: cfg.Timeout},
		writeURL: writeURL.String(),
		pingURL:  pingURL.String(),
		logger:   logger,
	}, nil
}

// Config returns a copy of the client's validated configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Write joins lines with newlines and posts them to the write endpoint.
// An empty batch is a no-op. See WriteRaw for failure semantics.
func (c *Client) Write(ctx context.Context, lines []string) error {
	if len(lines) == 0 {
		return nil
	}

	buf := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(buf)

	for i, line := range lines {
		if i > 0 {
			_ = buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}

	return c.WriteRaw(ctx, buf.Bytes())
}

// WriteRaw posts a pre-assembled newline-joined payload.
//
// Retryable failures (network errors and 5xx responses) are retried up to
// MaxRetries times with capped exponential backoff and jitter; the final
// error wraps errs.ErrWriteFailed. A 4xx response is permanent and
// returns immediately wrapping errs.ErrBadStatus; the payload is
// malformed or rejected and retrying cannot help.
func (c *Client) WriteRaw(ctx context.Context, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}

	body := payload
	if c.cfg.Compression == compress.TypeGzip {
		compressed, err := c.gzip.Compress(payload)
		if err != nil {
			return fmt.Errorf("%w: gzip: %s", errs.ErrWriteFailed, err)
		}
		body = compressed
	}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			c.logger.Warn("retrying write",
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()))

			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %s", errs.ErrWriteFailed, ctx.Err())
			case <-time.After(c.backoff(attempt)):
			}
		}

		err := c.post(ctx, body)
		if err == nil {
			return nil
		}
		if isPermanent(err) {
			return err
		}
		lastErr = err
	}

	return fmt.Errorf("%w: %d attempts: %s", errs.ErrWriteFailed, c.cfg.MaxRetries+1, lastErr)
}

// Ping checks connectivity to the InfluxDB /ping endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pingURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: ping: %s", errs.ErrBadStatus, resp.Status)
	}

	return nil
}

func (c *Client) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.writeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrWriteFailed, err)
	}

	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if c.cfg.Compression == compress.TypeGzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s", errs.ErrWriteFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode < 300:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s: %s", errs.ErrBadStatus, resp.Status, bytes.TrimSpace(msg))
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", errs.ErrWriteFailed, resp.Status)
	}
}

// backoff returns the sleep before the given retry attempt (1-based):
// RetryBackoff doubled per attempt, capped at backoffCapFactor times the
// base, with up to 50% random jitter added to avoid thundering herds.
func (c *Client) backoff(attempt int) time.Duration {
	limit := c.cfg.RetryBackoff * backoffCapFactor
	d := c.cfg.RetryBackoff << (attempt - 1)
	if d <= 0 || d > limit {
		d = limit
	}

	return d + time.Duration(rand.Int64N(int64(d)/2+1))
}

func isPermanent(err error) bool {
	return errors.Is(err, errs.ErrBadStatus)
}
