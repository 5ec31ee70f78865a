package ai

// Usage reports the token accounting returned by a provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// LLMResult is the outcome of one provider turn. It is implemented only by
// *GenerateResult and *ToolCallResult; use a type switch to branch:
//
//	switch result := result.(type) {
//	case *ai.GenerateResult:
//	    fmt.Println(result.Text)
//	case *ai.ToolCallResult:
//	    fmt.Println("model wants", result.Name)
//	}
type LLMResult interface {
	isLLMResult()
}

// GenerateResult carries generated text. When streaming, each result holds
// one fragment and the full answer is their concatenation in arrival order.
type GenerateResult struct {
	Text  string
	Usage *Usage
}

func (*GenerateResult) isLLMResult() {}

// ToolCallResult asks the caller to invoke a tool.
type ToolCallResult struct {
	// ID correlates the tool's answer with this call.
	ID   string
	Name string
	// Arguments holds the parsed JSON arguments.
	Arguments map[string]any
	// RawArguments holds the arguments as the model produced them.
	RawArguments string
	// Message is the assistant message announcing this call. It must be
	// appended to the history before the tool's answer.
	Message Message
}

func (*ToolCallResult) isLLMResult() {}

// NewToolCallResult builds a ToolCallResult whose synthetic assistant
// message announces exactly this call.
func NewToolCallResult(id string, name string, arguments map[string]any, rawArguments string) *ToolCallResult {
	if arguments == nil {
		arguments = map[string]any{}
	}
	return &ToolCallResult{
		ID:           id,
		Name:         name,
		Arguments:    arguments,
		RawArguments: rawArguments,
		Message: Message{
			Role: RoleAssistant,
			ToolCalls: []ToolCall{{
				ID:   id,
				Type: ToolCallTypeFunction,
				Function: ToolCallFunction{
					Name:      name,
					Arguments: rawArguments,
				},
			}},
		},
	}
}
