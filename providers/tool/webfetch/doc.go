// Package webfetch provides a tool that fetches a web page and hands its
// content to the model as Markdown.
//
// [NewTool] returns a [tool.FuncTool] ready for a tool catalog; the
// underlying [Fetcher] can also be used directly.
package webfetch
