package logging

// Attribute keys shared by the log records of fungraph components, so the
// same fact carries the same key whichever package logs it.

// --- Graph Attributes ---

const (
	// AttrGraphNode is the display name of the executing node.
	AttrGraphNode = "graph.node"

	// AttrGraphStep is the 1-based step counter of the run.
	AttrGraphStep = "graph.step"

	// AttrGraphOutcome labels how a run stopped.
	AttrGraphOutcome = "graph.outcome"
)

// --- Agent Attributes ---

const (
	AttrAgentRound         = "agent.round"
	AttrAgentRounds        = "agent.rounds"
	AttrAgentConversations = "agent.conversations"
)

// --- LLM Provider Attributes ---

const (
	// AttrLLMModel is the model identifier sent with the request.
	AttrLLMModel = "llm.model"

	// AttrLLMMessages is the number of messages in the request.
	AttrLLMMessages = "llm.messages"

	// AttrLLMTools is the number of tools declared in the request.
	AttrLLMTools = "llm.tools"

	// AttrStreamFrames is the number of data frames read from a stream.
	AttrStreamFrames = "llm.stream.frames"

	// AttrStreamPendingToolCalls counts tool calls still open when a stream ended.
	AttrStreamPendingToolCalls = "llm.stream.pending_tool_calls"

	// AttrStreamPayload is a (truncated) raw stream frame.
	AttrStreamPayload = "llm.stream.payload"
)

// --- Tool Attributes ---

const (
	AttrToolName        = "tool.name"
	AttrToolCallID      = "tool.call_id"
	AttrToolArguments   = "tool.arguments"
	AttrToolOutputBytes = "tool.output_bytes"
	AttrToolCount       = "tool.count"
)

// --- MCP Attributes ---

const (
	AttrMCPServer   = "mcp.server"
	AttrMCPProtocol = "mcp.protocol"
)

// --- General Attributes ---

const (
	// AttrError is the error value. Loggers built by New print it as "err".
	AttrError = "error"

	// AttrDuration is the operation duration.
	AttrDuration = "duration"
)
