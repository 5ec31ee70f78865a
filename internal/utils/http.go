package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/leofalp/fungraph/providers/ai"
)

// maxResponseBodySize is the maximum response body size read into memory
// (10 MB).
const maxResponseBodySize int64 = 10 * 1024 * 1024

// HeaderOption is an extra request header applied after the defaults.
type HeaderOption struct {
	Key   string
	Value string
}

// newJSONRequest builds a POST request with a JSON body and bearer auth.
func newJSONRequest(ctx context.Context, url string, apiKey string, body any, headers []HeaderOption) (*http.Request, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("error marshaling body: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		request.Header.Set("Authorization", "Bearer "+apiKey)
	}
	for _, header := range headers {
		request.Header.Set(header.Key, header.Value)
	}
	return request, nil
}

// readStatusError reads a capped error body and turns it into an
// *ai.StatusError.
func readStatusError(response *http.Response) error {
	errorBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return &ai.StatusError{
			StatusCode: response.StatusCode,
			Body:       fmt.Sprintf("(failed to read body: %v)", err),
		}
	}
	return &ai.StatusError{StatusCode: response.StatusCode, Body: string(errorBody)}
}

// DoPostSync performs a POST with a JSON body and decodes the JSON answer
// into OutputStruct.
//
// Errors are classified for the caller:
//   - connection failures and non-2xx statuses match ai.ErrTransport
//     (non-2xx statuses are *ai.StatusError)
//   - bodies that are not valid JSON for OutputStruct match ai.ErrDecode
//
// The response body is always closed; close failures are logged and never
// override the returned error.
func DoPostSync[OutputStruct any](ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, *OutputStruct, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	request, err := newJSONRequest(ctx, url, apiKey, body, headers)
	if err != nil {
		return nil, nil, err
	}

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: error sending request: %w", ai.ErrTransport, err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "err", closeErr, "url", url)
		}
	}(response.Body)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return response, nil, readStatusError(response)
	}

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBodySize))
	if err != nil {
		return response, nil, fmt.Errorf("%w: error reading response body: %w", ai.ErrTransport, err)
	}

	var output OutputStruct
	if err = json.Unmarshal(responseBody, &output); err != nil {
		return response, nil, fmt.Errorf("%w: error unmarshaling LLM response body (status %d): %w\nResponse preview: %s",
			ai.ErrDecode, response.StatusCode, err, TruncateString(string(responseBody), DefaultMaxStringLength))
	}

	return response, &output, nil
}
