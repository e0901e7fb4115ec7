package httputil

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
)

const httpTimeout = 30 * time.Second

// NewClient returns an HTTP client with the default request timeout.
func NewClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// errorBody is the error document written by the API server.
type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

// CheckStatus turns a non-2xx response into an error. The server's error
// code is kept when the body carries one; 5xx responses are retryable.
// The body is read but not closed.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var body errorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(data, &body) != nil || body.Code == "" {
		body.Code = codeForStatus(resp.StatusCode)
		body.Message = http.StatusText(resp.StatusCode)
	}
	err := errors.New(body.Code, "%s (status %d)", body.Message, resp.StatusCode)
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return &RetryableError{Err: err}
	}
	return err
}

func codeForStatus(status int) errors.Code {
	switch {
	case status == http.StatusNotFound:
		return errors.ErrCodeNotFound
	case status == http.StatusGatewayTimeout:
		return errors.ErrCodeTimeout
	case status >= 500:
		return errors.ErrCodeNetwork
	default:
		return errors.ErrCodeInvalidInput
	}
}
