package agent

import (
	"github.com/leofalp/fungraph/providers/ai"
)

// Outcome is how a turn ended.
type Outcome string

const (
	// OutcomeDone means the model produced a final text answer.
	OutcomeDone Outcome = "done"
	// OutcomeAborted means the turn stopped on an error.
	OutcomeAborted Outcome = "aborted"
)

// Conversation is one request sent to the provider and the result it
// produced. Request is a snapshot; later rounds do not modify it.
type Conversation struct {
	Request  ai.Messages
	Response ai.LLMResult
}

// Response is the result of a turn. It is returned on error too, carrying
// the conversations recorded before the failure.
type Response struct {
	FinalAnswer   string
	Conversations []Conversation
	Outcome       Outcome
}

// ToolRounds counts the conversations that ended in a tool call.
func (response *Response) ToolRounds() int {
	rounds := 0
	for _, conversation := range response.Conversations {
		if _, ok := conversation.Response.(*ai.ToolCallResult); ok {
			rounds++
		}
	}
	return rounds
}

// Usage sums the token usage reported across the turn. It returns nil when
// the provider reported none.
func (response *Response) Usage() *ai.Usage {
	var total *ai.Usage
	for _, conversation := range response.Conversations {
		generated, ok := conversation.Response.(*ai.GenerateResult)
		if !ok || generated.Usage == nil {
			continue
		}
		if total == nil {
			total = &ai.Usage{}
		}
		total.PromptTokens += generated.Usage.PromptTokens
		total.CompletionTokens += generated.Usage.CompletionTokens
		total.TotalTokens += generated.Usage.TotalTokens
	}
	return total
}
