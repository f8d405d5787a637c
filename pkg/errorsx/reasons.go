package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	ReasonUnknownTool      ReasonCode = "unknown_tool"
	ReasonToolExecution    ReasonCode = "tool_execution"
	ReasonMalformedToolArg ReasonCode = "malformed_tool_arguments"
	ReasonProvider         ReasonCode = "provider"
	ReasonMaxTurns         ReasonCode = "max_turns"
)
