// Package main provides the interactive stock-price chatbot.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/minhyannv/stockbot-go/pkg/agent"
	configpkg "github.com/minhyannv/stockbot-go/pkg/config"
	"github.com/minhyannv/stockbot-go/pkg/finance"
	"github.com/minhyannv/stockbot-go/pkg/llm"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
	"github.com/minhyannv/stockbot-go/pkg/tools"
)

func main() {
	cfg, err := parseCLIConfig(os.Args[1:], os.Stderr)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	appLogger := loggerpkg.NewWriterLogger(os.Stderr, levelFor(cfg))
	conv, err := build(cfg, appLogger)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := runREPL(context.Background(), conv, replOptions{
		Verbose: cfg.Verbose,
		Logger:  appLogger,
	}, os.Stdin, os.Stdout); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// build wires the finance adapter, tool registry and model client into a
// Conversation. A missing API key is only a warning here; the first model
// call reports it.
func build(cfg configpkg.Config, appLogger loggerpkg.Logger) (*agent.Conversation, error) {
	if err := cfg.Validate(); err != nil {
		loggerpkg.Warn(appLogger, "configuration incomplete", err)
	}

	market := finance.New(cfg.Finance, cfg.HTTPTimeout, finance.WithLogger(appLogger, cfg.Verbose))

	registry := tools.New(tools.Context{Verbose: cfg.Verbose, Logger: appLogger})
	if err := tools.RegisterStockTools(registry, market); err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}

	client := llm.NewOpenAI(cfg, llm.WithLogger(appLogger, cfg.Verbose))
	conv, err := agent.New(client, registry,
		agent.WithLogger(appLogger),
		agent.WithVerbose(cfg.Verbose),
		agent.WithMaxTurns(cfg.MaxTurns),
	)
	if err != nil {
		return nil, err
	}
	loggerpkg.Info(appLogger, "stockbot ready", map[string]any{
		"model":     cfg.Model,
		"max_turns": cfg.MaxTurns,
		"tools":     len(registry.Describe()),
	})
	return conv, nil
}

func levelFor(cfg configpkg.Config) string {
	if cfg.Verbose {
		return "debug"
	}
	return cfg.LogLevel
}
