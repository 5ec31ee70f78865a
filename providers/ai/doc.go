// Package ai defines the provider-agnostic contract between the agent loop
// and concrete LLM back ends.
//
// Conversations are expressed as [Messages]: an ordered list of role-tagged
// [Message] values plus the tool schemas advertised for the turn. A
// [Provider] answers a turn with exactly one [LLMResult], which is either a
// [*GenerateResult] carrying text or a [*ToolCallResult] asking the caller
// to run a tool. Streaming responses are delivered through a
// [*ResultStream], a pull-based sequence backed by a producer goroutine.
//
// Failures are classified with the sentinel errors [ErrTransport],
// [ErrDecode] and [ErrProtocol] so callers can use errors.Is regardless of
// the provider in use.
package ai
