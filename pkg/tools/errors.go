package tools

import (
	"errors"
	"fmt"
)

// ErrUnknownTool indicates a lookup for a name that was never registered.
var ErrUnknownTool = errors.New("unknown tool")

// ToolExecutionError carries a failure raised by a tool implementation.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// MalformedArgumentsError reports arguments that do not fit the tool's schema.
type MalformedArgumentsError struct {
	Tool string
	Err  error
}

func (e *MalformedArgumentsError) Error() string {
	return fmt.Sprintf("malformed arguments for tool %s: %v", e.Tool, e.Err)
}

func (e *MalformedArgumentsError) Unwrap() error {
	return e.Err
}
