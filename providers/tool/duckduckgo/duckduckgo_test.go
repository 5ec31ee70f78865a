package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leofalp/fungraph/providers/tool"
)

const goAnswer = `{
	"Heading": "Go (programming language)",
	"AbstractText": "Go is a statically typed, compiled language.",
	"AbstractURL": "https://en.wikipedia.org/wiki/Go_(programming_language)",
	"Answer": "",
	"Definition": "",
	"RelatedTopics": [
		{"FirstURL": "https://duckduckgo.com/Gopher", "Text": "Gopher - the Go mascot"},
		{"Name": "Tools", "Topics": [
			{"FirstURL": "/c/Go_tools", "Text": "gofmt - formatter"},
			{"FirstURL": "https://duckduckgo.com/Vet", "Text": "vet - static checks"}
		]},
		{"FirstURL": "https://duckduckgo.com/Empty", "Text": ""}
	]
}`

func newSearchServer(t *testing.T, status int, body string) (*httptest.Server, *[]string) {
	t.Helper()
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queries = append(queries, r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, DefaultUserAgent, r.Header.Get("User-Agent"))
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server, &queries
}

func TestSearch_Summary(t *testing.T) {
	server, queries := newSearchServer(t, http.StatusOK, goAnswer)

	output, err := NewSearcher(WithEndpoint(server.URL)).Search(context.Background(), Input{Query: " golang "})
	require.NoError(t, err)

	assert.Equal(t, []string{"golang"}, *queries)
	assert.Equal(t, "golang", output.Query)
	assert.Equal(t, "Abstract: Go is a statically typed, compiled language.\n\n"+
		"Related topics: Gopher - the Go mascot; gofmt - formatter; vet - static checks", output.Summary)
	assert.Equal(t, []string{
		"https://en.wikipedia.org/wiki/Go_(programming_language)",
		"https://duckduckgo.com/Gopher",
		"https://duckduckgo.com/c/Go_tools",
		"https://duckduckgo.com/Vet",
	}, output.Sources)
}

func TestSearch_MaxTopics(t *testing.T) {
	server, _ := newSearchServer(t, http.StatusOK, goAnswer)

	output, err := NewSearcher(WithEndpoint(server.URL), WithMaxTopics(1)).Search(context.Background(), Input{Query: "go"})
	require.NoError(t, err)
	assert.Contains(t, output.Summary, "Related topics: Gopher - the Go mascot")
	assert.NotContains(t, output.Summary, "gofmt")
}

func TestSearch_NoResults(t *testing.T) {
	server, _ := newSearchServer(t, http.StatusOK, `{"RelatedTopics": []}`)

	output, err := NewSearcher(WithEndpoint(server.URL)).Search(context.Background(), Input{Query: "zzzz"})
	require.NoError(t, err)
	assert.Equal(t, noResults, output.Summary)
	assert.Empty(t, output.Sources)
}

func TestSearch_Errors(t *testing.T) {
	t.Run("empty query", func(t *testing.T) {
		_, err := NewSearcher().Search(context.Background(), Input{Query: "  "})
		assert.ErrorIs(t, err, tool.ErrInvalidArguments)
	})

	t.Run("status", func(t *testing.T) {
		server, _ := newSearchServer(t, http.StatusServiceUnavailable, "")
		_, err := NewSearcher(WithEndpoint(server.URL)).Search(context.Background(), Input{Query: "go"})
		assert.ErrorContains(t, err, "unexpected status code: 503")
	})

	t.Run("malformed body", func(t *testing.T) {
		server, _ := newSearchServer(t, http.StatusOK, "<html>")
		_, err := NewSearcher(WithEndpoint(server.URL)).Search(context.Background(), Input{Query: "go"})
		assert.ErrorContains(t, err, "error parsing response")
	})
}

func TestNewTool_ThroughCatalog(t *testing.T) {
	server, _ := newSearchServer(t, http.StatusOK, goAnswer)
	catalog := tool.NewCatalogWithTools(NewTool(WithEndpoint(server.URL)))

	description := catalog.Descriptions()[0]
	assert.Equal(t, ToolName, description.Name)
	assert.Equal(t, []string{"query"}, description.Parameters.Required)

	raw, err := catalog.Call(context.Background(), ToolName, map[string]any{"query": "go"})
	require.NoError(t, err)
	var output Output
	require.NoError(t, json.Unmarshal([]byte(raw), &output))
	assert.Len(t, output.Sources, 4)

	_, err = catalog.Call(context.Background(), ToolName, map[string]any{})
	assert.ErrorIs(t, err, tool.ErrInvalidArguments)
}
