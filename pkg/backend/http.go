package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/alapierre/sortjson/pkg/logging"
	"github.com/cenkalti/backoff/v4"
)

var logger = logging.Component("pkg/backend")

// HTTPBackend talks to a plain HTTP document store (raw Nexus repository,
// WebDAV, S3 presigned gateway, ...). Paths that are already absolute
// http(s) URLs are used as they are.
type HTTPBackend struct {
	BaseURL  string
	Username string
	Password string
	Client   *http.Client

	// MaxElapsedTime bounds the whole retry loop of a single request.
	MaxElapsedTime time.Duration
}

func NewHTTPBackend(baseURL, username, password string) *HTTPBackend {
	return &HTTPBackend{
		BaseURL:  strings.TrimSuffix(baseURL, "/"),
		Username: username,
		Password: password,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
		MaxElapsedTime: 30 * time.Second,
	}
}

func (b *HTTPBackend) url(path string) string {
	if IsURL(path) {
		return path
	}
	return b.BaseURL + "/" + strings.TrimPrefix(path, "/")
}

// IsURL reports whether ref is an absolute http or https URL.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (b *HTTPBackend) executeWithRetry(ctx context.Context, method, url string, openBody func() (io.ReadCloser, error), contentType string) (*http.Response, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.MaxElapsedTime = b.MaxElapsedTime

	var attempt int
	var resp *http.Response

	operation := func() error {
		attempt++
		var body io.ReadCloser
		var err error
		if openBody != nil {
			body, err = openBody()
			if err != nil {
				return backoff.Permanent(err)
			}
			defer body.Close()
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return backoff.Permanent(err)
		}

		if b.Username != "" {
			req.SetBasicAuth(b.Username, b.Password)
		}
		if contentType != "" {
			req.Header.Set("Content-Type", contentType)
		}

		resp, err = b.Client.Do(req)
		if err != nil {
			if isRetryableError(err) {
				logger.Debugf("Retrying %s %s, attempt %d, error: %v", method, url, attempt, err)
				return err
			}
			return backoff.Permanent(err)
		}

		if isRetryableStatus(resp.StatusCode) {
			logger.Debugf("Retrying %s %s, attempt %d, status: %d", method, url, attempt, resp.StatusCode)
			resp.Body.Close()
			return fmt.Errorf("server error: %d", resp.StatusCode)
		}

		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(expBackoff, ctx)); err != nil {
		return nil, err
	}
	return resp, nil
}

func isRetryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}

func isRetryableStatus(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func (b *HTTPBackend) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	url := b.url(path)
	resp, err := b.executeWithRetry(ctx, http.MethodGet, url, nil, "")
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("failed to get %s: %s", url, resp.Status)
	}

	return resp.Body, nil
}

func (b *HTTPBackend) Put(ctx context.Context, path string, openBody func() (io.ReadCloser, error), contentType string) error {
	url := b.url(path)
	resp, err := b.executeWithRetry(ctx, http.MethodPut, url, openBody, contentType)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	}
	return fmt.Errorf("failed to put %s: %s", url, resp.Status)
}

func (b *HTTPBackend) Exists(ctx context.Context, path string) (bool, error) {
	url := b.url(path)
	resp, err := b.executeWithRetry(ctx, http.MethodHead, url, nil, "")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	}
	return false, fmt.Errorf("failed to check existence of %s: %s", url, resp.Status)
}
