// Package clients provides HTTP clients for external APIs
package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"space-explorer/internal/domain"
)

const maxErrorMessage = 200

// HTTPClient is a wrapper around http.Client with common configuration
type HTTPClient struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPClient creates a new HTTP client with timeout
func NewHTTPClient(timeout time.Duration, logger *slog.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Get performs a GET request and returns the response body and its content type.
// Failures are reported as *domain.RemoteError; the client never retries.
func (c *HTTPClient) Get(ctx context.Context, rawURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &domain.RemoteError{Message: "build request: " + redact(err)}
	}
	req.Header.Set("User-Agent", "space-explorer/1.0")

	started := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("upstream call failed", "host", req.URL.Host, "path", req.URL.Path, "error", redact(err))
		return nil, "", &domain.RemoteError{Message: redact(err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &domain.RemoteError{StatusCode: resp.StatusCode, Message: "read body: " + redact(err)}
	}

	c.logger.Debug("upstream call",
		"host", req.URL.Host,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(body),
		"elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &domain.RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}

	return body, resp.Header.Get("Content-Type"), nil
}

// GetJSON performs a GET request and decodes the JSON body into out
func (c *HTTPClient) GetJSON(ctx context.Context, rawURL, what string, out interface{}) error {
	body, _, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.DecodeError{What: what, Err: err}
	}
	return nil
}

// redact drops the request URL from transport errors so API keys never leak into messages
func redact(err error) string {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Sprintf("%s: %v", strings.ToLower(uerr.Op), uerr.Err)
	}
	return err.Error()
}

// errorMessage extracts a human readable message from an upstream error body.
// api.nasa.gov answers either {"error":{"message":..}} or {"code":..,"msg":..}.
func errorMessage(status int, body []byte) string {
	var wrapped struct {
		Error *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Msg     string `json:"msg"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wrapped); err == nil {
		switch {
		case wrapped.Error != nil && wrapped.Error.Message != "":
			return wrapped.Error.Message
		case wrapped.Msg != "":
			return wrapped.Msg
		case wrapped.Message != "":
			return wrapped.Message
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(status)
	}
	if len(text) > maxErrorMessage {
		text = text[:maxErrorMessage] + "..."
	}
	return text
}

func buildURL(base, path string, q url.Values) (string, error) {
	u, err := url.Parse(strings.TrimRight(base, "/") + path)
	if err != nil {
		return "", domain.InvalidArgument("url", "%v", err)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func checkDate(field, value string) error {
	if _, err := time.Parse(domain.DateLayout, value); err != nil {
		return domain.InvalidArgument(field, "%q is not a YYYY-MM-DD date", value)
	}
	return nil
}

func checkLatLon(lat, lon float64) error {
	if !(lat >= -90 && lat <= 90) {
		return domain.InvalidArgument("lat", "%v is outside [-90, 90]", lat)
	}
	if !(lon >= -180 && lon <= 180) {
		return domain.InvalidArgument("lon", "%v is outside [-180, 180]", lon)
	}
	return nil
}
