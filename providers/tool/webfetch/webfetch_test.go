package webfetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/fungraph/providers/tool"
)

const testPage = `<!DOCTYPE html>
<html>
<head><title>Test Page</title></head>
<body>
	<h1>Welcome</h1>
	<p>This is a <strong>test</strong> paragraph.</p>
	<ul><li>Item 1</li><li>Item 2</li></ul>
</body>
</html>`

func newPageServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, testPage)
	})
	mux.HandleFunc("/moved", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/page", http.StatusFound)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetch_ConvertsToMarkdown(t *testing.T) {
	server := newPageServer(t)

	output, err := NewFetcher().Fetch(context.Background(), Input{URL: server.URL + "/page"})
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/page", output.URL)
	assert.Contains(t, output.Markdown, "# Welcome")
	assert.Contains(t, output.Markdown, "**test**")
	assert.Contains(t, output.Markdown, "Item 2")
	assert.Empty(t, output.HTML)
}

func TestFetch_FollowsRedirects(t *testing.T) {
	server := newPageServer(t)

	output, err := NewFetcher().Fetch(context.Background(), Input{URL: server.URL + "/moved", IncludeHTML: true})
	require.NoError(t, err)

	assert.Equal(t, server.URL+"/page", output.URL)
	assert.Contains(t, output.HTML, "<h1>Welcome</h1>")
}

func TestFetch_Errors(t *testing.T) {
	server := newPageServer(t)

	testCases := []struct {
		name    string
		fetcher *Fetcher
		url     string
		want    string
	}{
		{"empty URL", NewFetcher(), "   ", "URL cannot be empty"},
		{"not found", NewFetcher(), server.URL + "/missing", "unexpected status code: 404"},
		{"body too large", NewFetcher(WithMaxBodySize(16)), server.URL + "/page", "response body too large"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.fetcher.Fetch(context.Background(), Input{URL: tc.url})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://go.dev", normalizeURL(" go.dev "))
	assert.Equal(t, "http://go.dev", normalizeURL("http://go.dev"))
	assert.Equal(t, "", normalizeURL(""))
}

// TestNewTool_ThroughCatalog runs the tool the way an agent does: schema
// validation followed by argument decoding.
func TestNewTool_ThroughCatalog(t *testing.T) {
	server := newPageServer(t)
	catalog := tool.NewCatalogWithTools(NewTool())

	output, err := catalog.Call(context.Background(), ToolName, map[string]any{"url": server.URL + "/page"})
	require.NoError(t, err)
	assert.True(t, strings.Contains(output, `"markdown"`))
	assert.Contains(t, output, "Welcome")

	_, err = catalog.Call(context.Background(), ToolName, map[string]any{})
	assert.ErrorIs(t, err, tool.ErrInvalidArguments)
}
