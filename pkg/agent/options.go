package agent

import loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"

// Option configures optional runtime dependencies for Conversation.
type Option func(*deps)

type deps struct {
	logger       loggerpkg.Logger
	verbose      bool
	maxTurns     int
	systemPrompt *string
}

// WithLogger injects a logger dependency.
func WithLogger(l loggerpkg.Logger) Option {
	return func(d *deps) {
		d.logger = l
	}
}

// WithVerbose enables debug logging, including transcript dumps after each
// tool round.
func WithVerbose(v bool) Option {
	return func(d *deps) {
		d.verbose = v
	}
}

// WithMaxTurns caps the number of model calls per question.
func WithMaxTurns(n int) Option {
	return func(d *deps) {
		d.maxTurns = n
	}
}

// WithSystemPrompt replaces the embedded system prompt.
func WithSystemPrompt(p string) Option {
	return func(d *deps) {
		d.systemPrompt = &p
	}
}
