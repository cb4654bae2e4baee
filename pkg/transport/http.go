package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrymomot/hookrelay/pkg/hook"
)

// HTTP delivers payloads as POST requests to subscription URLs. One pooled
// client is shared across all endpoints; safe for concurrent use.
type HTTP struct {
	client *http.Client
}

// NewHTTP creates an HTTP transport with a connection-pooled client tuned
// for many short-lived requests against a spread of subscriber endpoints.
func NewHTTP() *HTTP {
	return &HTTP{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// NewHTTPWithClient creates an HTTP transport with a custom client, e.g. for
// tests or custom proxies. A nil client falls back to the default.
func NewHTTPWithClient(client *http.Client) *HTTP {
	if client == nil {
		return NewHTTP()
	}
	return &HTTP{client: client}
}

// Deliver POSTs body to the subscription URL with the given headers. A
// non-2xx response is reported as ErrUnexpectedStatus with a trimmed excerpt
// of the response body for diagnostics.
func (t *HTTP) Deliver(ctx context.Context, sub hook.Subscription, body []byte, headers map[string]string) error {
	if err := validateURL(sub.URL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// 4KB is plenty for an error excerpt and caps memory per failure.
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(excerpt) > 0 {
			return fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, excerpt)
		}
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	// Drain so the connection goes back to the pool.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func validateURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("%w: URL is required", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	// http/https only, which also blocks SSRF via exotic schemes.
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalidURL)
	}
	return nil
}
