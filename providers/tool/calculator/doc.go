// Package calculator provides a small arithmetic tool. It needs no network
// access, which makes it the usual first tool when trying out an agent.
package calculator
