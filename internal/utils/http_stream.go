package utils

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/leofalp/fungraph/providers/ai"
)

// DoPostStream performs a POST that expects a Server-Sent Events answer and
// returns the response with its body still open. The caller owns the body
// and must close it. On error paths the body is read and closed here.
//
// Connection failures and non-2xx statuses match ai.ErrTransport.
func DoPostStream(ctx context.Context, client *http.Client, url string, apiKey string, body any, headers ...HeaderOption) (*http.Response, error) {
	httpClient := client
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	request, err := newJSONRequest(ctx, url, apiKey, body, headers)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Accept", "text/event-stream")

	response, err := httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("%w: error sending stream request: %w", ai.ErrTransport, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		defer CloseWithLog(response.Body)
		return response, readStatusError(response)
	}

	return response, nil
}

// maxSSELineSize is the maximum size of a single SSE line (1 MB). Tool call
// arguments and long completions easily exceed bufio's 64 KiB default.
const maxSSELineSize = 1 * 1024 * 1024

// DoneSentinel is the data payload that ends an OpenAI-compatible stream.
const DoneSentinel = "[DONE]"

// SSEScanner reads Server-Sent Events from an io.Reader and returns the
// data payload of each message event.
type SSEScanner struct {
	scanner *bufio.Scanner
	// eventName is the "event:" field of the event being read.
	eventName string
}

// NewSSEScanner creates an SSEScanner over reader. Lines longer than
// maxSSELineSize make Next fail with an error wrapping bufio.ErrTooLong.
func NewSSEScanner(reader io.Reader) *SSEScanner {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), maxSSELineSize)
	return &SSEScanner{scanner: scanner}
}

// Next returns the data payload of the next message event.
//
// Every "data:" line is a payload of its own: chat-completion chunks are
// single-line JSON, and servers differ on whether frames are separated by a
// blank line or a single newline. Comment lines (":") and the id/retry
// fields are skipped. Data lines belonging to an event named other than
// "message" are control events and are skipped; the name applies until the
// next blank line. io.EOF is returned on the [DONE] sentinel and when the
// reader is exhausted; any other error comes from the underlying reader.
func (sseScanner *SSEScanner) Next() (string, error) {
	for sseScanner.scanner.Scan() {
		line := sseScanner.scanner.Text()

		if line == "" {
			sseScanner.eventName = ""
			continue
		}

		if strings.HasPrefix(line, ":") {
			continue
		}

		if value, found := strings.CutPrefix(line, "event:"); found {
			sseScanner.eventName = strings.TrimSpace(value)
			continue
		}

		value, found := strings.CutPrefix(line, "data:")
		if !found {
			continue
		}
		if sseScanner.eventName != "" && sseScanner.eventName != "message" {
			continue
		}
		data := strings.TrimSpace(value)
		if data == DoneSentinel {
			return "", io.EOF
		}
		return data, nil
	}

	if err := sseScanner.scanner.Err(); err != nil {
		return "", fmt.Errorf("SSE scanner error: %w", err)
	}
	return "", io.EOF
}
