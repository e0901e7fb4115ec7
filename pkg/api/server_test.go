package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/turnoutpaths/pkg/buildinfo"
	"github.com/matzehuels/turnoutpaths/pkg/errors"
	"github.com/matzehuels/turnoutpaths/pkg/geom"
	"github.com/matzehuels/turnoutpaths/pkg/observability"
	"github.com/matzehuels/turnoutpaths/pkg/paths"
	"github.com/matzehuels/turnoutpaths/pkg/pipeline"
	"github.com/matzehuels/turnoutpaths/pkg/turnout"
)

func straight(title string) turnout.Definition {
	return turnout.Definition{
		Title:    title,
		Segments: []geom.Segment{geom.Straight(geom.Point{X: 0, Y: 0}, geom.Point{X: 10, Y: 0})},
		Endpoints: []geom.Endpoint{
			{Pos: geom.Point{X: 0, Y: 0}, Angle: 270},
			{Pos: geom.Point{X: 10, Y: 0}, Angle: 90},
		},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := log.New(io.Discard)
	s := NewServer(pipeline.NewRunner(nil, nil, logger), pipeline.Options{}, logger)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if id := resp.Header.Get(RequestIDHeader); id == "" {
		t.Error("response has no request ID")
	}
}

func TestPaths(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/paths", PathsRequest{Turnout: straight("straight")})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[PathsResponse](t, resp)

	want := paths.Table{Groups: []paths.TableGroup{{Label: "P0", SubPaths: [][]int{{1}}}}}
	if diff := cmp.Diff(want, got.Table); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int8{'P', '0', 0, 1, 0, 0, 0}, got.Encoded); diff != "" {
		t.Errorf("Encoded mismatch (-want +got):\n%s", diff)
	}
	if got.Length != 7 || got.Title != "straight" {
		t.Errorf("Length = %d, Title = %q", got.Length, got.Title)
	}
}

func TestCompare(t *testing.T) {
	ts := newTestServer(t)
	def := straight("a")
	def.Paths = &paths.Table{Groups: []paths.TableGroup{{Label: "P0", SubPaths: [][]int{{-1}}}}}

	got := decode[PathsResponse](t, post(t, ts, "/v1/compare", PathsRequest{Turnout: def}))
	if got.Comparison == nil || got.Comparison.Match {
		t.Fatalf("Comparison = %+v, want a mismatch", got.Comparison)
	}
	if !strings.Contains(got.Comparison.Saved, "-1") {
		t.Errorf("Saved dump = %q", got.Comparison.Saved)
	}

	resp := post(t, ts, "/v1/compare", PathsRequest{Turnout: straight("b")})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("compare without saved table: status = %d, want 400", resp.StatusCode)
	}
}

func TestRenderDOT(t *testing.T) {
	ts := newTestServer(t)
	resp := post(t, ts, "/v1/render", RenderRequest{
		PathsRequest: PathsRequest{Turnout: straight("a")},
		Render:       pipeline.RenderOptions{Format: pipeline.FormatDOT},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("Content-Type = %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "graph turnout") {
		t.Errorf("body = %s", body)
	}

	resp = post(t, ts, "/v1/render", RenderRequest{
		PathsRequest: PathsRequest{Turnout: straight("a")},
		Render:       pipeline.RenderOptions{Format: pipeline.FormatPDF},
	})
	if got := decode[ErrorResponse](t, resp); got.Code != errors.ErrCodeUnsupported {
		t.Errorf("pdf render code = %s, want %s", got.Code, errors.ErrCodeUnsupported)
	}
}

func TestDecode(t *testing.T) {
	ts := newTestServer(t)
	got := decode[DecodeResponse](t, post(t, ts, "/v1/decode", DecodeRequest{
		Encoded: []int8{'P', '0', 0, 1, -2, 0, 0, 0},
	}))
	want := paths.Table{Groups: []paths.TableGroup{{Label: "P0", SubPaths: [][]int{{1, -2}}}}}
	if diff := cmp.Diff(want, got.Table); diff != "" {
		t.Errorf("Table mismatch (-want +got):\n%s", diff)
	}
	if got.Length != 8 {
		t.Errorf("Length = %d, want 8", got.Length)
	}

	resp := post(t, ts, "/v1/decode", DecodeRequest{Encoded: []int8{'P', '0', 0, 1}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("truncated table: status = %d, want 400", resp.StatusCode)
	}
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name     string
		body     string
		wantCode errors.Code
	}{
		{"malformed", `{"turnout":`, errors.ErrCodeInvalidInput},
		{"unknown field", `{"turnout":{},"colour":"red"}`, errors.ErrCodeInvalidInput},
		{"no title", `{"turnout":{"segments":[]}}`, errors.ErrCodeInvalidDefinition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodPost, ts.URL+"/v1/paths", strings.NewReader(tt.body))
			req.Header.Set(RequestIDHeader, "b7d2b2a4-7f0e-4d4c-9a43-6b1c7c2b1f00")
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
			got := decode[ErrorResponse](t, resp)
			if got.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", got.Code, tt.wantCode)
			}
			if got.RequestID != "b7d2b2a4-7f0e-4d4c-9a43-6b1c7c2b1f00" {
				t.Errorf("RequestID = %q, want the caller's ID", got.RequestID)
			}
		})
	}
}

func TestRequestIDReplacesInvalid(t *testing.T) {
	ts := newTestServer(t)
	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if id := resp.Header.Get(RequestIDHeader); id == "not-a-uuid" || id == "" {
		t.Errorf("request ID = %q, want a fresh UUID", id)
	}
}

func TestOptionsOverlay(t *testing.T) {
	s := NewServer(nil, pipeline.Options{AngleTolerance: 5, MaxGroups: 10, PreferSavedTable: true}, log.New(io.Discard))

	if got := s.options(nil); got.AngleTolerance != 5 || got.MaxGroups != 10 {
		t.Errorf("options(nil) = %+v", got)
	}
	got := s.options(&pipeline.Options{MaxGroups: 3, Refresh: true})
	if got.AngleTolerance != 5 || got.MaxGroups != 3 || !got.Refresh || !got.PreferSavedTable {
		t.Errorf("options(overlay) = %+v", got)
	}
}

type apiHooks struct {
	observability.NoopAPIHooks
	mu       sync.Mutex
	statuses map[string]int
}

func (h *apiHooks) OnResponse(_ context.Context, _ string, _ string, path string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses[path] = status
}

func TestAPIHooks(t *testing.T) {
	hooks := &apiHooks{statuses: map[string]int{}}
	observability.SetAPIHooks(hooks)
	defer observability.Reset()

	ts := newTestServer(t)
	post(t, ts, "/v1/paths", PathsRequest{Turnout: straight("a")})
	post(t, ts, "/v1/decode", DecodeRequest{Encoded: []int8{1}})

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	want := map[string]int{"/v1/paths": 200, "/v1/decode": 400}
	if diff := cmp.Diff(want, hooks.statuses); diff != "" {
		t.Errorf("statuses mismatch (-want +got):\n%s", diff)
	}
}

func TestClient(t *testing.T) {
	ts := newTestServer(t)
	c, err := NewClient(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := c.Health(ctx); err != nil {
		t.Fatalf("Health() error: %v", err)
	}

	res, err := c.Paths(ctx, straight("a"), &pipeline.Options{MaxGroups: 4})
	if err != nil {
		t.Fatalf("Paths() error: %v", err)
	}
	if len(res.Table.Groups) != 1 || res.Stats.Groups != 1 {
		t.Errorf("Paths() = %+v", res)
	}

	_, err = c.Paths(ctx, straight(""), nil)
	if !errors.Is(err, errors.ErrCodeInvalidDefinition) {
		t.Errorf("Paths(no title) error = %v, want %s", err, errors.ErrCodeInvalidDefinition)
	}

	def := straight("a")
	def.Paths = &res.Table
	cmpRes, err := c.Compare(ctx, def, nil)
	if err != nil {
		t.Fatalf("Compare() error: %v", err)
	}
	if cmpRes.Comparison == nil || !cmpRes.Comparison.Match {
		t.Errorf("Compare() comparison = %+v, want a match", cmpRes.Comparison)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewClient() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
	}
}

func TestVersion(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/version")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	got := decode[buildinfo.Info](t, resp)
	if got.Version != buildinfo.Version || got.Go == "" {
		t.Errorf("version = %+v", got)
	}
}
