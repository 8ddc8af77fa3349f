package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/kvfilter/internal/config"
	"github.com/oakwood-commons/kvfilter/internal/schema"
)

const people = `[
	{"name": "Alice", "age": 31, "tags": ["admin"]},
	{"name": "Bob", "age": 17, "tags": []},
	{"name": "Ann", "age": 45}
]`

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()
	var data any
	require.NoError(t, json.Unmarshal([]byte(people), &data))
	ds, err := schema.Build(data, nil)
	require.NoError(t, err)
	cfg, err := config.Default()
	require.NoError(t, err)
	return New(ds, cfg, logr.Discard()).App()
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp, out
}

func TestHealthzAndRequestID(t *testing.T) {
	app := setupTestApp(t)

	resp, body := do(t, app, "GET", "/v1/healthz", "")
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 3, body["records"])
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))

	req := httptest.NewRequest("GET", "/v1/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc")
	r, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc", r.Header.Get(RequestIDHeader))
}

func TestMembers(t *testing.T) {
	_, body := do(t, setupTestApp(t), "GET", "/v1/members", "")
	members := body["members"].([]any)
	var names []string
	for _, m := range members {
		names = append(names, m.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"age", "name", "tags"}, names)
	assert.Equal(t, "sequence", members[2].(map[string]any)["category"])
}

func candidateTexts(body map[string]any) []string {
	var out []string
	for _, c := range body["candidates"].([]any) {
		out = append(out, c.(map[string]any)["text"].(string))
	}
	return out
}

func TestComplete(t *testing.T) {
	app := setupTestApp(t)

	resp, body := do(t, app, "POST", "/v1/complete", `{"expression": "ag"}`)
	require.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "ag", body["query"])
	assert.EqualValues(t, 2, body["cursor"])
	assert.Equal(t, "age", candidateTexts(body)[0])
	require.Contains(t, body, "error", "a bare fragment does not compile")
	assert.Equal(t, "member not found", body["error"].(map[string]any)["kind"])

	_, body = do(t, app, "POST", "/v1/complete", `{"expression": "age >= 18 ", "cursor": 0}`)
	assert.Equal(t, "age >= 18", body["text"], "empty tokens are not rendered")
	assert.EqualValues(t, 0, body["cursor"])
	assert.Contains(t, candidateTexts(body), "age")
	assert.NotContains(t, body, "error")
	ctx := body["context"].(map[string]any)
	assert.EqualValues(t, 0, ctx["depth"])
}

func TestCompleteBadRequests(t *testing.T) {
	app := setupTestApp(t)

	resp, body := do(t, app, "POST", "/v1/complete", `{"expression": `)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Contains(t, body["error"].(map[string]any)["message"], "invalid request body")

	resp, body = do(t, app, "POST", "/v1/complete", `{"expression": "age", "cursor": 99}`)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "cursor out of range", body["error"].(map[string]any)["message"])
}

func names(body map[string]any) []string {
	var out []string
	for _, it := range body["items"].([]any) {
		out = append(out, it.(map[string]any)["name"].(string))
	}
	return out
}

func TestFilter(t *testing.T) {
	app := setupTestApp(t)

	tests := []struct {
		body    string
		matched int
		want    []string
	}{
		{`{"expression": "age > 30"}`, 2, []string{"Alice", "Ann"}},
		{`{"expression": "age > 30", "limit": 1}`, 2, []string{"Alice"}},
		{`{"expression": "age > 30", "tail": 1}`, 2, []string{"Ann"}},
		{`{"expression": "tags"}`, 1, []string{"Alice"}},
		{`{"expression": ""}`, 3, []string{"Alice", "Bob", "Ann"}},
	}
	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp, body := do(t, app, "POST", "/v1/filter", tt.body)
			require.Equal(t, 200, resp.StatusCode)
			assert.EqualValues(t, 3, body["total"])
			assert.EqualValues(t, tt.matched, body["matched"])
			assert.Equal(t, tt.want, names(body))
		})
	}
}

func TestFilterCompilesThroughSessionEditor(t *testing.T) {
	var data any
	require.NoError(t, json.Unmarshal([]byte(people), &data))
	ds, err := schema.Build(data, nil)
	require.NoError(t, err)
	cfg, err := config.Default()
	require.NoError(t, err)

	var lines []string
	lgr := funcr.New(func(prefix, args string) {
		lines = append(lines, args)
	}, funcr.Options{Verbosity: 1})
	app := New(ds, cfg, lgr).App()

	resp, body := do(t, app, "POST", "/v1/filter", `{"expression": "age > 30"}`)
	require.Equal(t, 200, resp.StatusCode)
	assert.EqualValues(t, 2, body["matched"])

	var compiled bool
	for _, l := range lines {
		if strings.Contains(l, `"msg"="compiled"`) && strings.Contains(l, "age > 30") {
			compiled = true
		}
	}
	assert.True(t, compiled, "compile should go through the editor: %v", lines)
}

func TestFilterErrors(t *testing.T) {
	app := setupTestApp(t)

	resp, body := do(t, app, "POST", "/v1/filter", `{"expression": "age > old"}`)
	assert.Equal(t, 422, resp.StatusCode)
	e := body["error"].(map[string]any)
	assert.Equal(t, "invalid literal", e["kind"])
	assert.Equal(t, "old", e["token"])
	assert.Equal(t, map[string]any{"start": float64(6), "end": float64(9)}, e["span"])

	resp, _ = do(t, app, "POST", "/v1/filter", `{"expression": "age > 1", "limit": 1, "tail": 1}`)
	assert.Equal(t, 400, resp.StatusCode)
}
