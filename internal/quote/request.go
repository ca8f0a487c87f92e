package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxErrorBody bounds how much of a failed response is kept on APIError.
const maxErrorBody = 4 << 10

// APIError is a non-2xx response from the chart API. Code and Message come
// from the chart error envelope when the provider sends one.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter time.Duration
	Body       []byte
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("quote api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("quote api error %d: %s", e.StatusCode, e.Message)
}

// IsRetryable returns true if the error should trigger a retry.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// newAPIError builds an APIError from a failed response. Yahoo reports
// unknown symbols as 404 with {"chart":{"error":{code,description}}}.
func newAPIError(resp *http.Response, body []byte) *APIError {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	e := &APIError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		Body:       body,
	}

	var envelope chartResponse
	if json.Unmarshal(body, &envelope) == nil && envelope.Chart.Error != nil {
		e.Code = envelope.Chart.Error.Code
		if d := envelope.Chart.Error.Description; d != "" {
			e.Message = d
		}
	}

	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		e.RetryAfter = time.Duration(secs) * time.Second
	}
	return e
}

// doRequest performs an HTTP GET on path with the given query.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, newAPIError(resp, body)
	}
	return body, nil
}

// retryDelay returns the wait before the given attempt (1-based): the
// backoff doubled per attempt with ±50% jitter, or the provider's
// Retry-After when that is longer.
func (c *Client) retryDelay(attempt int, apiErr *APIError) time.Duration {
	backoff := c.retryBackoff << (attempt - 1)
	delay := backoff / 2
	if backoff > 0 {
		delay += time.Duration(rand.Int64N(int64(backoff)))
	}
	if apiErr.RetryAfter > delay {
		delay = apiErr.RetryAfter
	}
	return delay
}

// doWithRetry retries retryable API errors up to maxRetries times.
func (c *Client) doWithRetry(ctx context.Context, path string, query url.Values) ([]byte, error) {
	body, err := c.doRequest(ctx, path, query)
	for attempt := 1; err != nil && attempt <= c.maxRetries; attempt++ {
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.IsRetryable() {
			return nil, err
		}

		delay := c.retryDelay(attempt, apiErr)
		c.logger.Debug("retrying quote request",
			"attempt", attempt,
			"status", apiErr.StatusCode,
			"delay", delay,
			"path", path,
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		body, err = c.doRequest(ctx, path, query)
	}

	if err != nil {
		if c.maxRetries > 0 {
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.IsRetryable() {
				return nil, fmt.Errorf("max retries exceeded: %w", err)
			}
		}
		return nil, err
	}
	return body, nil
}

// get performs a GET request and decodes the JSON body into result.
func (c *Client) get(ctx context.Context, path string, query url.Values, result any) error {
	body, err := c.doWithRetry(ctx, path, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
