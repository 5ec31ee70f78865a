package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/leofalp/fungraph/core/jsonschema"
	"github.com/leofalp/fungraph/internal/utils"
	"github.com/leofalp/fungraph/providers/tool"
)

const (
	// ToolName is the name the model uses to request a page.
	ToolName = "web_fetch"
	// DefaultTimeout bounds a single fetch including the body read.
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the default User-Agent header value.
	DefaultUserAgent = "fungraph-webfetch/1.0"
	// DefaultMaxBodySize caps the response body (10MB).
	DefaultMaxBodySize = 10 * 1024 * 1024
	// maxRedirects is the number of redirects followed before giving up.
	maxRedirects = 10
)

// ErrBodyTooLarge is returned when a page exceeds the configured size limit.
var ErrBodyTooLarge = errors.New("response body too large")

// Input holds the arguments sent by the model.
type Input struct {
	// URL may be partial ("go.dev") or full ("https://go.dev").
	URL string `json:"url"`
	// IncludeHTML also returns the raw HTML alongside the Markdown.
	IncludeHTML bool `json:"include_html,omitempty"`
}

// Output is returned to the model as JSON.
type Output struct {
	// URL is the final URL after redirects.
	URL      string `json:"url"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html,omitempty"`
}

// Fetcher downloads pages and converts them to Markdown.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client. Its redirect policy is kept.
func WithHTTPClient(client *http.Client) Option {
	return func(fetcher *Fetcher) {
		fetcher.client = client
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(fetcher *Fetcher) {
		fetcher.userAgent = userAgent
	}
}

// WithMaxBodySize sets the largest body accepted, in bytes.
func WithMaxBodySize(size int64) Option {
	return func(fetcher *Fetcher) {
		fetcher.maxBodySize = size
	}
}

// NewFetcher creates a Fetcher with a client limited to DefaultTimeout and
// ten redirects.
func NewFetcher(options ...Option) *Fetcher {
	fetcher := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("too many redirects (>%d)", maxRedirects)
				}
				return nil
			},
		},
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, option := range options {
		option(fetcher)
	}
	return fetcher
}

// NewTool returns the fetcher as a catalog tool.
func NewTool(options ...Option) *tool.FuncTool[Input, Output] {
	fetcher := NewFetcher(options...)
	return tool.NewFuncTool(ToolName, fetcher.Fetch,
		tool.WithDescription("Fetches a web page and returns its content as Markdown. Partial URLs get an https:// prefix. Redirects are followed and the final URL is returned."),
		tool.WithParameters(jsonschema.Object(map[string]*jsonschema.Schema{
			"url":          jsonschema.String("The URL of the page to fetch, e.g. 'go.dev' or 'https://go.dev'"),
			"include_html": jsonschema.Boolean("Also return the raw HTML"),
		}, "url")),
	)
}

// Fetch retrieves input.URL and converts the HTML body to Markdown.
// Non-200 responses, oversized bodies and conversion failures are errors.
func (fetcher *Fetcher) Fetch(ctx context.Context, input Input) (Output, error) {
	url := normalizeURL(input.URL)
	if url == "" {
		return Output{}, errors.New("URL cannot be empty")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Output{}, fmt.Errorf("failed to create request: %w", err)
	}
	request.Header.Set("User-Agent", fetcher.userAgent)
	request.Header.Set("Accept", "text/html,application/xhtml+xml")

	response, err := fetcher.client.Do(request)
	if err != nil {
		return Output{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer utils.CloseWithLog(response.Body)

	if response.StatusCode != http.StatusOK {
		return Output{}, fmt.Errorf("unexpected status code: %d", response.StatusCode)
	}

	// One extra byte tells an exact-limit body from an oversized one.
	body, err := io.ReadAll(io.LimitReader(response.Body, fetcher.maxBodySize+1))
	if err != nil {
		return Output{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > fetcher.maxBodySize {
		return Output{}, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, fetcher.maxBodySize)
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return Output{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	output := Output{
		URL:      response.Request.URL.String(),
		Markdown: markdown,
	}
	if input.IncludeHTML {
		output.HTML = string(body)
	}
	return output, nil
}

func normalizeURL(raw string) string {
	url := strings.TrimSpace(raw)
	if url == "" {
		return ""
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}
	return url
}
