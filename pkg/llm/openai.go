package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	configpkg "github.com/minhyannv/stockbot-go/pkg/config"
	"github.com/minhyannv/stockbot-go/pkg/errorsx"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
	"github.com/minhyannv/stockbot-go/pkg/tools"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ProviderError wraps a failure reported by the model provider.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// OpenAI completes transcripts with the chat completions API at temperature 0.
type OpenAI struct {
	client openai.Client
	model  string
	apiKey string

	logger  loggerpkg.Logger
	verbose bool
}

// ClientOption configures optional OpenAI dependencies.
type ClientOption func(*OpenAI, *[]option.RequestOption)

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger, verbose bool) ClientOption {
	return func(c *OpenAI, _ *[]option.RequestOption) {
		if l != nil {
			c.logger = l
		}
		c.verbose = verbose
	}
}

// WithRequestOptions appends raw SDK request options.
func WithRequestOptions(opts ...option.RequestOption) ClientOption {
	return func(_ *OpenAI, reqOpts *[]option.RequestOption) {
		*reqOpts = append(*reqOpts, opts...)
	}
}

// NewOpenAI builds a client from cfg. A missing API key is reported on the
// first Complete call, not here.
func NewOpenAI(cfg configpkg.Config, opts ...ClientOption) *OpenAI {
	c := &OpenAI{
		model:  cfg.Model,
		apiKey: cfg.APIKey,
		logger: loggerpkg.NopLogger{},
	}

	reqOpts := []option.RequestOption{option.WithMaxRetries(0)}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		reqOpts = append(reqOpts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.HTTPTimeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c, &reqOpts)
		}
	}

	c.client = openai.NewClient(reqOpts...)
	return c
}

// Complete sends the transcript and tool descriptors and classifies the reply.
func (c *OpenAI) Complete(ctx context.Context, transcript *Transcript, descriptors []tools.Descriptor) (Response, error) {
	if c.apiKey == "" {
		return Response{}, errorsx.Wrap(&ProviderError{Op: "chat completion", Err: configpkg.ErrMissingAPIKey}, errorsx.ReasonProvider)
	}
	if transcript == nil {
		return Response{}, errors.New("transcript is required")
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    ToParams(transcript.Messages()),
		Temperature: openai.Float(0),
	}
	if len(descriptors) > 0 {
		params.Tools = ToolParams(descriptors)
	}

	loggerpkg.Debug(c.verbose, c.logger, "chat completion request", map[string]any{
		"model":    c.model,
		"messages": transcript.Len(),
		"tools":    len(descriptors),
	})
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Response{}, errorsx.Wrap(&ProviderError{Op: "chat completion", Err: err}, errorsx.ReasonProvider)
	}
	if len(completion.Choices) == 0 {
		return Response{}, errorsx.Wrap(&ProviderError{Op: "chat completion", Err: errors.New("empty completion choices")}, errorsx.ReasonProvider)
	}

	choice := completion.Choices[0]
	loggerpkg.Debug(c.verbose, c.logger, "chat completion received", map[string]any{
		"finish_reason": choice.FinishReason,
		"tool_calls":    len(choice.Message.ToolCalls),
	})
	return FromCompletion(choice.FinishReason, choice.Message)
}

// ErrUnexpectedFinish reports a completion that neither stopped normally nor
// requested tools, such as one cut off by length or a content filter.
var ErrUnexpectedFinish = errors.New("unexpected finish reason")

// FromCompletion converts a provider message into a Response. Only a normal
// stop is terminal; tool calls are returned for dispatch and any other finish
// reason is a provider error. Tool call arguments that are not a JSON object
// yield a *tools.MalformedArgumentsError.
func FromCompletion(finishReason string, msg openai.ChatCompletionMessage) (Response, error) {
	resp := Response{
		Finish:               FinishStop,
		Text:                 msg.Content,
		ProviderFinishReason: finishReason,
	}

	switch finishReason {
	case "stop":
		if len(msg.ToolCalls) == 0 {
			return resp, nil
		}
	case "tool_calls", "function_call":
		if len(msg.ToolCalls) == 0 {
			return Response{}, errorsx.Wrap(&ProviderError{
				Op:  "chat completion",
				Err: fmt.Errorf("%w: %q without tool calls", ErrUnexpectedFinish, finishReason),
			}, errorsx.ReasonProvider)
		}
	default:
		return Response{}, errorsx.Wrap(&ProviderError{
			Op:  "chat completion",
			Err: fmt.Errorf("%w: %q", ErrUnexpectedFinish, finishReason),
		}, errorsx.ReasonProvider)
	}

	resp.Finish = FinishNeedsToolCall
	for _, call := range msg.ToolCalls {
		args, err := decodeArguments(call.Function.Arguments)
		if err != nil {
			return Response{}, errorsx.Wrap(&tools.MalformedArgumentsError{Tool: call.Function.Name, Err: err}, errorsx.ReasonMalformedToolArg)
		}
		resp.ToolCalls = append(resp.ToolCalls, ToolCallRequest{
			ID:           call.ID,
			Name:         call.Function.Name,
			Arguments:    args,
			RawArguments: call.Function.Arguments,
		})
	}
	return resp, nil
}

func decodeArguments(raw string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" {
		return map[string]any{}, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	return args, nil
}

// ToParams converts transcript messages to chat completion params.
func ToParams(messages []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleAssistant:
			out = append(out, assistantParam(m))
		case RoleTool:
			out = append(out, openai.ToolMessage(m.Content, m.ToolCallID))
		}
	}
	return out
}

func assistantParam(m Message) openai.ChatCompletionMessageParamUnion {
	if len(m.ToolCalls) == 0 {
		return openai.AssistantMessage(m.Content)
	}
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if m.Content != "" {
		assistant.Content.OfString = openai.String(m.Content)
	}
	for _, call := range m.ToolCalls {
		raw := call.RawArguments
		if raw == "" {
			if b, err := json.Marshal(call.Arguments); err == nil {
				raw = string(b)
			}
		}
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
			ID: call.ID,
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      call.Name,
				Arguments: raw,
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

// ToolParams converts registry descriptors to function tool definitions.
func ToolParams(descriptors []tools.Descriptor) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(descriptors))
	for _, d := range descriptors {
		fn := openai.FunctionDefinitionParam{
			Name:       d.Name,
			Parameters: openai.FunctionParameters(d.Parameters),
		}
		if d.Description != "" {
			fn.Description = openai.String(d.Description)
		}
		out = append(out, openai.ChatCompletionToolParam{Function: fn})
	}
	return out
}
