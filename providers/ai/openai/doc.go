// Package openai implements [ai.Provider] on top of the official OpenAI Go
// SDK (github.com/openai/openai-go).
//
// It targets any OpenAI-compatible chat-completion service: point
// [Config.BaseURL] at Gemini's compatibility endpoint, a local inference
// server, or leave it empty for api.openai.com. Streamed chunks are decoded
// by the same chatcompletion.Assembler the HTTP providers use.
package openai
