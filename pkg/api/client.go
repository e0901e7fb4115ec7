package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/httputil"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

// Client calls a turnoutpaths API server.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a client for the server at baseURL.
func NewClient(baseURL string) (*Client, error) {
	if err := apperrors.ValidateURL(baseURL, "http", "https"); err != nil {
		return nil, err
	}
	return &Client{base: strings.TrimRight(baseURL, "/"), http: httputil.NewClient()}, nil
}

// Health checks that the server answers.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]string
	return c.do(ctx, http.MethodGet, "/healthz", nil, &out)
}

// Paths generates the Path Table of def on the server.
func (c *Client) Paths(ctx context.Context, def turnout.Definition, opts *pipeline.Options) (*PathsResponse, error) {
	var out PathsResponse
	if err := c.do(ctx, http.MethodPost, "/v1/paths", PathsRequest{Turnout: def, Options: opts}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Compare generates def on the server and checks it against its saved table.
func (c *Client) Compare(ctx context.Context, def turnout.Definition, opts *pipeline.Options) (*PathsResponse, error) {
	var out PathsResponse
	if err := c.do(ctx, http.MethodPost, "/v1/compare", PathsRequest{Turnout: def, Options: opts}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do sends one request, retrying transient failures with the same request
// ID, and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	id := uuid.NewString()

	return httputil.RetryWithBackoff(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, method, c.base+path, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set(RequestIDHeader, id)
		if in != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return &httputil.RetryableError{Err: apperrors.Wrap(apperrors.ErrCodeNetwork, err, "%s %s", method, path)}
		}
		defer resp.Body.Close()
		if err := httputil.CheckStatus(resp); err != nil {
			return err
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	})
}
