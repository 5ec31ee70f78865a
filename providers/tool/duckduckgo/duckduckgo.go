package duckduckgo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/internal/utils"
	"github.com/leofalp/fungraph/providers/tool"
)

const (
	// ToolName is the name the model uses to request a search.
	ToolName = "web_search"
	// DefaultEndpoint is the Instant Answer API.
	DefaultEndpoint = "https://api.duckduckgo.com/"
	// DefaultTimeout bounds one search request.
	DefaultTimeout = 15 * time.Second
	// DefaultUserAgent is the default User-Agent header value.
	DefaultUserAgent = "fungraph-duckduckgo/1.0"
	// DefaultMaxTopics is the number of related topics kept in a summary.
	DefaultMaxTopics = 5

	noResults = "No results found for this query."
)

// Input holds the arguments sent by the model.
type Input struct {
	Query string `json:"query"`
}

// Output is returned to the model as JSON.
type Output struct {
	Query   string `json:"query"`
	Summary string `json:"summary"`
	// Sources lists the URLs the summary was built from.
	Sources []string `json:"sources,omitempty"`
}

// instantAnswer is the subset of the API response used in summaries.
type instantAnswer struct {
	Heading       string  `json:"Heading"`
	AbstractText  string  `json:"AbstractText"`
	AbstractURL   string  `json:"AbstractURL"`
	Answer        string  `json:"Answer"`
	Definition    string  `json:"Definition"`
	DefinitionURL string  `json:"DefinitionURL"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

type topic struct {
	FirstURL string `json:"FirstURL"`
	Text     string `json:"Text"`
	// Topics is set instead of Text for a category of topics.
	Topics []topic `json:"Topics"`
}

// Searcher queries the Instant Answer API.
type Searcher struct {
	client    *http.Client
	endpoint  string
	userAgent string
	maxTopics int
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(searcher *Searcher) {
		searcher.client = client
	}
}

// WithEndpoint points the searcher at another API base URL.
func WithEndpoint(endpoint string) Option {
	return func(searcher *Searcher) {
		searcher.endpoint = endpoint
	}
}

// WithMaxTopics sets how many related topics are summarized.
func WithMaxTopics(count int) Option {
	return func(searcher *Searcher) {
		searcher.maxTopics = count
	}
}

// NewSearcher creates a Searcher using DefaultEndpoint.
func NewSearcher(options ...Option) *Searcher {
	searcher := &Searcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		endpoint:  DefaultEndpoint,
		userAgent: DefaultUserAgent,
		maxTopics: DefaultMaxTopics,
	}
	for _, option := range options {
		option(searcher)
	}
	return searcher
}

// NewTool returns the searcher as a catalog tool.
func NewTool(options ...Option) *tool.FuncTool[Input, Output] {
	searcher := NewSearcher(options...)
	return tool.NewFuncTool(ToolName, searcher.Search,
		tool.WithDescription("Search the web with DuckDuckGo. Returns instant answers, abstracts, definitions and related topics for a query."),
		tool.WithParameters(jsonschema.Object(map[string]*jsonschema.Schema{
			"query": jsonschema.String("The search query"),
		}, "query")),
	)
}

// Search runs query and summarizes the answer.
func (searcher *Searcher) Search(ctx context.Context, input Input) (Output, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return Output{}, fmt.Errorf("%w: empty query", tool.ErrInvalidArguments)
	}

	answer, err := searcher.fetch(ctx, query)
	if err != nil {
		return Output{}, err
	}
	summary, sources := searcher.summarize(answer)
	return Output{Query: query, Summary: summary, Sources: sources}, nil
}

func (searcher *Searcher) fetch(ctx context.Context, query string) (*instantAnswer, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("no_html", "1")
	params.Set("skip_disambig", "1")

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, searcher.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	request.Header.Set("User-Agent", searcher.userAgent)

	response, err := searcher.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer utils.CloseWithLog(response.Body)

	if response.StatusCode != http.StatusOK && response.StatusCode != http.StatusAccepted {
		return nil, fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}

	var answer instantAnswer
	if err := json.NewDecoder(response.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("error parsing response: %w", err)
	}
	return &answer, nil
}

func (searcher *Searcher) summarize(answer *instantAnswer) (string, []string) {
	var (
		sections []string
		sources  []string
	)
	if answer.AbstractText != "" {
		sections = append(sections, "Abstract: "+answer.AbstractText)
		sources = appendSource(sources, answer.AbstractURL)
	}
	if answer.Answer != "" {
		sections = append(sections, "Answer: "+answer.Answer)
	}
	if answer.Definition != "" {
		sections = append(sections, "Definition: "+answer.Definition)
		sources = appendSource(sources, answer.DefinitionURL)
	}

	var topics []string
	for _, related := range flattenTopics(answer.RelatedTopics) {
		if len(topics) >= searcher.maxTopics {
			break
		}
		topics = append(topics, related.Text)
		sources = appendSource(sources, related.FirstURL)
	}
	if len(topics) > 0 {
		sections = append(sections, "Related topics: "+strings.Join(topics, "; "))
	}

	if len(sections) == 0 {
		return noResults, nil
	}
	return strings.Join(sections, "\n\n"), sources
}

// flattenTopics expands topic categories, dropping entries without text.
func flattenTopics(topics []topic) []topic {
	var flat []topic
	for _, related := range topics {
		if len(related.Topics) > 0 {
			flat = append(flat, flattenTopics(related.Topics)...)
			continue
		}
		if related.Text != "" {
			flat = append(flat, related)
		}
	}
	return flat
}

// appendSource adds an absolute URL, resolving paths against duckduckgo.com.
func appendSource(sources []string, link string) []string {
	switch {
	case link == "":
		return sources
	case strings.HasPrefix(link, "/"):
		return append(sources, "https://duckduckgo.com"+link)
	default:
		return append(sources, link)
	}
}
