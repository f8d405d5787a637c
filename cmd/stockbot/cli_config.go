package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/joho/godotenv"
	configpkg "github.com/minhyannv/stockbot-go/pkg/config"
)

// cliFlags are the command-line overrides applied on top of file and env config.
type cliFlags struct {
	configPath string
	maxTurns   int
	verbose    bool
	logLevel   string
}

// parseCLIConfig loads .env, the optional config file and the environment,
// then applies only the flags that were set explicitly.
func parseCLIConfig(args []string, stderr io.Writer) (configpkg.Config, error) {
	_ = godotenv.Load()

	defaults := configpkg.DefaultConfig()
	fs := flag.NewFlagSet("stockbot", flag.ContinueOnError)
	if stderr != nil {
		fs.SetOutput(stderr)
	}

	var f cliFlags
	fs.StringVar(&f.configPath, "config", "", "Optional config file (yaml, json or toml)")
	fs.IntVar(&f.maxTurns, "max_turns", defaults.MaxTurns, "Max model calls per question")
	fs.BoolVar(&f.verbose, "verbose", defaults.Verbose, "Verbose tool-call logging")
	fs.StringVar(&f.logLevel, "log_level", defaults.LogLevel, "Log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return configpkg.Config{}, err
	}
	if fs.NArg() > 0 {
		return configpkg.Config{}, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg, err := configpkg.Load(f.configPath)
	if err != nil {
		return configpkg.Config{}, err
	}

	fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "max_turns":
			cfg.MaxTurns = f.maxTurns
		case "verbose":
			cfg.Verbose = f.verbose
		case "log_level":
			cfg.LogLevel = f.logLevel
		}
	})
	return configpkg.Normalize(cfg), nil
}
