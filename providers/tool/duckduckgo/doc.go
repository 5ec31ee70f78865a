// Package duckduckgo provides a web search tool backed by the DuckDuckGo
// Instant Answer API. The API is free and needs no key; it returns
// abstracts, direct answers, definitions and related topics rather than a
// ranked list of pages.
package duckduckgo
