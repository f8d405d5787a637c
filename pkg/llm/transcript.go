// Package llm defines the conversation transcript and the model client that
// completes it.
package llm

import (
	"context"
	"fmt"

	"github.com/minhyannv/stockbot-go/pkg/tools"
)

// Role is the role for a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCallRequest is a model request to run a named tool.
type ToolCallRequest struct {
	ID        string
	Name      string
	Arguments map[string]any
	// RawArguments is the JSON text the model emitted, replayed verbatim.
	RawArguments string
}

// Message is one transcript entry.
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCallRequest
	// ToolCallID and Name are set on tool-role messages only.
	ToolCallID string
	Name       string
}

// Transcript is an append-only message log for a single question.
type Transcript struct {
	messages []Message
	pending  map[string]bool
}

// NewTranscript seeds a transcript with the system prompt and the question.
func NewTranscript(systemPrompt, question string) *Transcript {
	t := &Transcript{pending: make(map[string]bool)}
	t.messages = append(t.messages,
		Message{Role: RoleSystem, Content: systemPrompt},
		Message{Role: RoleUser, Content: question},
	)
	return t
}

// Append adds m. A tool-role message must answer a tool call issued by an
// earlier assistant message.
func (t *Transcript) Append(m Message) error {
	if t.pending == nil {
		t.pending = make(map[string]bool)
	}
	switch m.Role {
	case RoleSystem, RoleUser:
	case RoleAssistant:
		for _, call := range m.ToolCalls {
			if call.ID == "" {
				return fmt.Errorf("assistant tool call %s has no id", call.Name)
			}
			t.pending[call.ID] = true
		}
	case RoleTool:
		if !t.pending[m.ToolCallID] {
			return fmt.Errorf("tool message references unknown tool call %q", m.ToolCallID)
		}
		delete(t.pending, m.ToolCallID)
	default:
		return fmt.Errorf("invalid message role %q", m.Role)
	}
	t.messages = append(t.messages, m)
	return nil
}

// Messages returns a copy of the transcript.
func (t *Transcript) Messages() []Message {
	return append([]Message(nil), t.messages...)
}

// Len reports the number of messages.
func (t *Transcript) Len() int {
	return len(t.messages)
}

// FinishReason classifies a model response.
type FinishReason string

const (
	FinishStop          FinishReason = "stop"
	FinishNeedsToolCall FinishReason = "tool_calls"
)

// Response is the outcome of one completion.
type Response struct {
	Finish    FinishReason
	Text      string
	ToolCalls []ToolCallRequest
	// ProviderFinishReason is the raw reason reported by the provider.
	ProviderFinishReason string
}

// Terminal reports whether the response carries a final answer.
func (r Response) Terminal() bool {
	return r.Finish != FinishNeedsToolCall
}

// Completer sends a transcript and the available tools to a model.
type Completer interface {
	Complete(ctx context.Context, transcript *Transcript, descriptors []tools.Descriptor) (Response, error)
}
