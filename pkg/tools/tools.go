package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/minhyannv/stockbot-go/pkg/errorsx"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
	"github.com/xeipuuv/gojsonschema"
)

// Descriptor advertises a tool to the model.
type Descriptor struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Parameters  map[string]any `yaml:"parameters"`
}

// Func implements a tool. args has already been validated against the
// descriptor's parameter schema.
type Func func(ctx context.Context, args map[string]any) (any, error)

type Context struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

func (c Context) debug(msg string, obj any) {
	loggerpkg.Debug(c.Verbose, c.Logger, msg, obj)
}

type entry struct {
	desc   Descriptor
	fn     Func
	schema *gojsonschema.Schema
}

// Registry holds registered tools and handles execution.
type Registry struct {
	registry map[string]entry
	order    []string
	ctx      Context
}

// New builds an empty registry.
func New(ctx Context) *Registry {
	if ctx.Logger == nil {
		ctx.Logger = loggerpkg.NopLogger{}
	}
	return &Registry{
		registry: make(map[string]entry),
		ctx:      ctx,
	}
}

// Register associates desc.Name with fn. Names are unique; the descriptor is
// copied so later changes by the caller have no effect.
func (r *Registry) Register(desc Descriptor, fn Func) error {
	desc.Name = strings.TrimSpace(desc.Name)
	if desc.Name == "" {
		return errors.New("tool name is empty")
	}
	if fn == nil {
		return fmt.Errorf("tool %s has no implementation", desc.Name)
	}
	if _, exists := r.registry[desc.Name]; exists {
		return fmt.Errorf("tool %s already registered", desc.Name)
	}

	desc = cloneDescriptor(desc)
	schema, err := compileSchema(desc.Parameters)
	if err != nil {
		return fmt.Errorf("tool %s: %w", desc.Name, err)
	}

	r.registry[desc.Name] = entry{desc: desc, fn: fn, schema: schema}
	r.order = append(r.order, desc.Name)
	r.ctx.debug("registered tool", map[string]any{"tool": desc.Name})
	return nil
}

// Describe returns the registered descriptors in registration order.
func (r *Registry) Describe() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, cloneDescriptor(r.registry[name].desc))
	}
	return out
}

// Invoke runs the named tool. Failures are never swallowed: unknown names
// yield ErrUnknownTool, schema mismatches a *MalformedArgumentsError and
// implementation failures a *ToolExecutionError.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, ok := r.registry[name]
	if !ok {
		return nil, errorsx.Wrap(fmt.Errorf("%w: %s", ErrUnknownTool, name), errorsx.ReasonUnknownTool)
	}
	if args == nil {
		args = map[string]any{}
	}

	if err := validateArguments(e.schema, args); err != nil {
		r.ctx.debug("tool arguments rejected", map[string]any{"tool": name, "error": err.Error()})
		return nil, errorsx.Wrap(&MalformedArgumentsError{Tool: name, Err: err}, errorsx.ReasonMalformedToolArg)
	}

	r.ctx.debug("invoking tool", map[string]any{"tool": name, "args": args})
	result, err := e.fn(ctx, args)
	if err != nil {
		var malformed *MalformedArgumentsError
		if errors.As(err, &malformed) {
			return nil, errorsx.Wrap(err, errorsx.ReasonMalformedToolArg)
		}
		return nil, errorsx.Wrap(&ToolExecutionError{Tool: name, Err: err}, errorsx.ReasonToolExecution)
	}
	return result, nil
}

// toolResult is the envelope sent back to the model after tool execution.
type toolResult struct {
	Result any `json:"result"`
}

// EncodeResult serializes a tool's return value as {"result": value}.
func EncodeResult(value any) (string, error) {
	payload, err := json.Marshal(toolResult{Result: value})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

func cloneDescriptor(d Descriptor) Descriptor {
	d.Parameters = cloneMap(d.Parameters)
	return d
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	default:
		return val
	}
}
