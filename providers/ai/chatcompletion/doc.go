// Package chatcompletion implements the OpenAI-compatible chat-completion
// wire format shared by the providers in this module.
//
// [NewRequest] encodes [ai.Messages] into a request body, [DecodeResponse]
// maps a complete response to an [ai.LLMResult], and the [Assembler] turns
// streamed chunks into incremental results, accumulating tool call
// fragments by index until the call is complete. [StreamResults] wires an
// Assembler to a Server-Sent Events body and exposes it as an
// [*ai.ResultStream].
package chatcompletion
