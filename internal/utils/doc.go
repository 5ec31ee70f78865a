// Package utils holds the low-level helpers shared by the provider
// implementations: JSON-over-HTTP round trips ([DoPostSync]), streaming
// requests ([DoPostStream]) read with an [SSEScanner], and small string and
// resource helpers.
package utils
