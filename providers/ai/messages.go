package ai

import (
	"github.com/leofalp/fungraph/core/jsonschema"
)

// MessageRole identifies the author of a message.
type MessageRole string

const (
	// RoleSystem carries instructions that steer the model.
	RoleSystem MessageRole = "system"
	// RoleUser carries human input.
	RoleUser MessageRole = "user"
	// RoleAssistant carries model output, including tool call announcements.
	RoleAssistant MessageRole = "assistant"
	// RoleTool carries the result of a tool invocation.
	RoleTool MessageRole = "tool"
)

// ToolCallTypeFunction is the only tool call type chat-completion APIs emit.
const ToolCallTypeFunction = "function"

// ToolCallFunction names the function a tool call targets and carries its
// arguments exactly as the model produced them.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolCall is a single tool invocation announced by the assistant.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// Message is one entry of a conversation.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content,omitempty"`

	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	// ToolCallID links a tool message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
	// Name optionally records the tool that produced a tool message.
	Name string `json:"name,omitempty"`
}

// NewSystemMessage returns a system message.
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewHumanMessage returns a user message.
func NewHumanMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// NewAIMessage returns a plain assistant message.
func NewAIMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// NewToolMessage returns the result of the tool call identified by toolCallID.
func NewToolMessage(content string, toolCallID string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// clone copies the message including its tool call slice.
func (message Message) clone() Message {
	if message.ToolCalls != nil {
		message.ToolCalls = append([]ToolCall(nil), message.ToolCalls...)
	}
	return message
}

// ToolDescription is the schema of one tool advertised to the model.
type ToolDescription struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// Messages is the ordered history sent to a provider for one turn together
// with the tools the model may call. The order of Messages is preserved on
// the wire.
type Messages struct {
	Messages []Message
	Tools    []ToolDescription
}

// Add appends messages to the history.
func (messages *Messages) Add(message ...Message) {
	messages.Messages = append(messages.Messages, message...)
}

// Len reports the number of messages, not counting tools.
func (messages Messages) Len() int {
	return len(messages.Messages)
}

// Last returns the final message and false when the history is empty.
func (messages Messages) Last() (Message, bool) {
	if len(messages.Messages) == 0 {
		return Message{}, false
	}
	return messages.Messages[len(messages.Messages)-1], true
}

// Clone returns a copy that shares no mutable state with the receiver.
// Conversation traces store clones so later turns cannot rewrite them.
func (messages Messages) Clone() Messages {
	cloned := Messages{}
	if messages.Messages != nil {
		cloned.Messages = make([]Message, len(messages.Messages))
		for index, message := range messages.Messages {
			cloned.Messages[index] = message.clone()
		}
	}
	if messages.Tools != nil {
		cloned.Tools = make([]ToolDescription, len(messages.Tools))
		for index, tool := range messages.Tools {
			tool.Parameters = tool.Parameters.Clone()
			cloned.Tools[index] = tool
		}
	}
	return cloned
}

// MessagesBuilder assembles a Messages value fluently:
//
//	messages := ai.NewMessagesBuilder().
//	    AddSystemMessage("You are terse.").
//	    AddHumanMessage("What is the weather in Tokyo?").
//	    AddTools(weatherTool).
//	    Build()
type MessagesBuilder struct {
	messages Messages
}

// NewMessagesBuilder returns an empty builder.
func NewMessagesBuilder() *MessagesBuilder {
	return &MessagesBuilder{}
}

// AddSystemMessage appends a system message.
func (builder *MessagesBuilder) AddSystemMessage(content string) *MessagesBuilder {
	return builder.AddMessage(NewSystemMessage(content))
}

// AddHumanMessage appends a user message.
func (builder *MessagesBuilder) AddHumanMessage(content string) *MessagesBuilder {
	return builder.AddMessage(NewHumanMessage(content))
}

// AddAIMessage appends an assistant message.
func (builder *MessagesBuilder) AddAIMessage(content string) *MessagesBuilder {
	return builder.AddMessage(NewAIMessage(content))
}

// AddToolMessage appends a tool result correlated with toolCallID.
func (builder *MessagesBuilder) AddToolMessage(content string, toolCallID string) *MessagesBuilder {
	return builder.AddMessage(NewToolMessage(content, toolCallID))
}

// AddMessage appends arbitrary messages.
func (builder *MessagesBuilder) AddMessage(message ...Message) *MessagesBuilder {
	builder.messages.Add(message...)
	return builder
}

// AddTools attaches tool schemas to the turn.
func (builder *MessagesBuilder) AddTools(tools ...ToolDescription) *MessagesBuilder {
	builder.messages.Tools = append(builder.messages.Tools, tools...)
	return builder
}

// Build returns an independent copy of the accumulated messages.
func (builder *MessagesBuilder) Build() Messages {
	return builder.messages.Clone()
}
