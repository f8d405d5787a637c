// Package agent drives a question through model calls and tool invocations
// until the model produces a final answer.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/minhyannv/stockbot-go/pkg/errorsx"
	"github.com/minhyannv/stockbot-go/pkg/llm"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
	"github.com/minhyannv/stockbot-go/pkg/prompt"
	"github.com/minhyannv/stockbot-go/pkg/tools"
)

// DefaultMaxTurns bounds model calls per question when no cap is configured.
const DefaultMaxTurns = 10

var (
	// ErrEmptyQuestion is returned for blank input; no model call is made.
	ErrEmptyQuestion = errors.New("question is required")
	// ErrMaxTurns is returned when the model keeps requesting tools.
	ErrMaxTurns = errors.New("max turns reached before assistant produced a final response")
)

// State is a conversation loop state.
type State int

const (
	AwaitingLM State = iota
	DispatchingTools
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingLM:
		return "AWAITING_LM"
	case DispatchingTools:
		return "DISPATCHING_TOOLS"
	case Done:
		return "DONE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ToolInvoker advertises and runs tools.
type ToolInvoker interface {
	Describe() []tools.Descriptor
	Invoke(ctx context.Context, name string, args map[string]any) (any, error)
}

// Result describes how one question was processed.
type Result struct {
	TurnID     string
	Answer     string
	State      State
	Calls      int
	Transcript []llm.Message
}

// Conversation answers one question at a time. It holds no per-question state.
type Conversation struct {
	client       llm.Completer
	tools        ToolInvoker
	systemPrompt string
	maxTurns     int

	logger  loggerpkg.Logger
	verbose bool
}

// New builds a Conversation over client and registry.
func New(client llm.Completer, registry ToolInvoker, opts ...Option) (*Conversation, error) {
	if client == nil {
		return nil, errors.New("model client is required")
	}
	if registry == nil {
		return nil, errors.New("tool registry is required")
	}

	d := deps{logger: loggerpkg.NopLogger{}, maxTurns: DefaultMaxTurns}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	if d.logger == nil {
		d.logger = loggerpkg.NopLogger{}
	}
	if d.maxTurns <= 0 {
		d.maxTurns = 1
	}

	systemPrompt := prompt.System()
	if d.systemPrompt != nil {
		systemPrompt = *d.systemPrompt
	}
	if !prompt.Check(systemPrompt) {
		return nil, errors.New("system prompt is empty")
	}

	return &Conversation{
		client:       client,
		tools:        registry,
		systemPrompt: systemPrompt,
		maxTurns:     d.maxTurns,
		logger:       d.logger,
		verbose:      d.verbose,
	}, nil
}

// Ask runs the loop for one question on a fresh transcript. Tool and provider
// errors abort the question and are returned unchanged.
func (c *Conversation) Ask(ctx context.Context, question string) (Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Result{}, ErrEmptyQuestion
	}
	if ctx == nil {
		ctx = context.Background()
	}

	turnID := uuid.NewString()
	transcript := llm.NewTranscript(c.systemPrompt, question)
	res := Result{TurnID: turnID, State: AwaitingLM}
	c.debug("question received", map[string]any{"turn_id": turnID, "bytes": len(question)})

	var resp llm.Response
	for res.State != Done {
		if err := ctx.Err(); err != nil {
			return c.abort(res, transcript, err)
		}

		switch res.State {
		case AwaitingLM:
			if res.Calls >= c.maxTurns {
				return c.abort(res, transcript, errorsx.Wrap(ErrMaxTurns, errorsx.ReasonMaxTurns))
			}
			res.Calls++
			c.debug("awaiting model", map[string]any{"turn_id": turnID, "call": res.Calls, "messages": transcript.Len()})

			var err error
			resp, err = c.client.Complete(ctx, transcript, c.tools.Describe())
			if err != nil {
				return c.abort(res, transcript, err)
			}
			if err := transcript.Append(llm.Message{
				Role:      llm.RoleAssistant,
				Content:   resp.Text,
				ToolCalls: resp.ToolCalls,
			}); err != nil {
				return c.abort(res, transcript, err)
			}
			if resp.Terminal() {
				res.State = Done
				continue
			}
			res.State = DispatchingTools

		case DispatchingTools:
			if err := c.dispatch(ctx, turnID, transcript, resp.ToolCalls); err != nil {
				return c.abort(res, transcript, err)
			}
			c.dumpTranscript(turnID, transcript)
			res.State = AwaitingLM
		}
	}

	res.Answer = resp.Text
	res.Transcript = transcript.Messages()
	c.debug("question answered", map[string]any{"turn_id": turnID, "calls": res.Calls})
	return res, nil
}

// dispatch runs every requested tool in the order the model emitted them and
// appends each {"result": ...} payload to the transcript.
func (c *Conversation) dispatch(ctx context.Context, turnID string, transcript *llm.Transcript, calls []llm.ToolCallRequest) error {
	for i, call := range calls {
		c.debug("dispatching tool", map[string]any{
			"turn_id": turnID,
			"index":   i + 1,
			"of":      len(calls),
			"tool":    call.Name,
			"call_id": call.ID,
		})

		value, err := c.tools.Invoke(ctx, call.Name, call.Arguments)
		if err != nil {
			return err
		}
		payload, err := tools.EncodeResult(value)
		if err != nil {
			return errorsx.Wrap(&tools.ToolExecutionError{Tool: call.Name, Err: fmt.Errorf("encode result: %w", err)}, errorsx.ReasonToolExecution)
		}
		if err := transcript.Append(llm.Message{
			Role:       llm.RoleTool,
			ToolCallID: call.ID,
			Name:       call.Name,
			Content:    payload,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Conversation) abort(res Result, transcript *llm.Transcript, err error) (Result, error) {
	res.Transcript = transcript.Messages()
	c.debug("question aborted", map[string]any{
		"turn_id": res.TurnID,
		"state":   res.State.String(),
		"reason":  string(errorsx.Reason(err)),
		"error":   err.Error(),
	})
	return res, err
}

func (c *Conversation) dumpTranscript(turnID string, transcript *llm.Transcript) {
	if !c.verbose {
		return
	}
	for i, m := range transcript.Messages() {
		c.debug("transcript", map[string]any{
			"turn_id":      turnID,
			"index":        i,
			"role":         string(m.Role),
			"content":      m.Content,
			"tool_calls":   len(m.ToolCalls),
			"tool_call_id": m.ToolCallID,
		})
	}
}

func (c *Conversation) debug(msg string, obj any) {
	loggerpkg.Debug(c.verbose, c.logger, msg, obj)
}
