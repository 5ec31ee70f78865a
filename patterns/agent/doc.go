// Package agent implements the tool-calling loop that sits between a chat
// model and a catalog of tools.
//
// An [Agent] sends the conversation to its provider. When the model answers
// with text, the turn is done. When it requests a tool, the agent runs the
// tool from its own [tool.Catalog], appends the call and its output to the
// history and asks the model again. Every request/response pair is kept as a
// [Conversation] so callers can inspect the whole exchange.
//
// The loop is bounded by [WithMaxToolRounds]. An unknown tool, a tool
// failure or invalid arguments abort the turn; the trace collected so far
// is returned together with the error.
//
// [NewNode] embeds an agent in a graph as a regular node.
package agent
