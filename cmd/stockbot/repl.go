package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minhyannv/stockbot-go/pkg/agent"
	"github.com/minhyannv/stockbot-go/pkg/errorsx"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
)

const (
	inputPrompt = `Enter your question (type "exit" to end the conversation): `
	goodbye     = "Goodbye! Exiting the program."
	separator   = "========================================================"
)

// asker answers a single question.
type asker interface {
	Ask(ctx context.Context, question string) (agent.Result, error)
}

// replOptions configures REPL behavior.
type replOptions struct {
	Verbose bool
	Logger  loggerpkg.Logger
}

// maxQuestionBytes bounds a single input line. Longer lines are rejected and
// the loop keeps reading.
const maxQuestionBytes = 1 << 20

var errQuestionTooLong = fmt.Errorf("question exceeds %d bytes", maxQuestionBytes)

// runREPL reads questions until "exit" or end of input. A failed question is
// reported and the loop keeps going.
func runREPL(ctx context.Context, bot asker, opts replOptions, in io.Reader, out io.Writer) error {
	if bot == nil {
		return fmt.Errorf("conversation is required")
	}
	if in == nil {
		return fmt.Errorf("input reader is required")
	}
	if out == nil {
		out = io.Discard
	}

	loggerpkg.Debug(opts.Verbose, opts.Logger, "repl start", nil)

	reader := bufio.NewReader(in)
	for {
		_, _ = fmt.Fprint(out, inputPrompt)
		line, tooLong, err := readLine(reader)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		eof := errors.Is(err, io.EOF)
		if eof && line == "" && !tooLong {
			_, _ = fmt.Fprintln(out)
			return nil
		}

		switch {
		case tooLong:
			reportError(out, opts, errQuestionTooLong)
		case strings.EqualFold(line, "exit"):
			_, _ = fmt.Fprintln(out, goodbye)
			return nil
		case strings.TrimSpace(line) == "":
		default:
			res, err := bot.Ask(ctx, strings.TrimSpace(line))
			if err != nil {
				reportError(out, opts, err)
			} else {
				printAnswer(out, res.Answer)
			}
		}

		if eof {
			_, _ = fmt.Fprintln(out)
			return nil
		}
	}
}

// readLine returns the next line without its terminator. Lines longer than
// maxQuestionBytes are drained and reported with tooLong set.
func readLine(r *bufio.Reader) (line string, tooLong bool, err error) {
	var (
		buf      []byte
		chunk    []byte
		isPrefix bool
	)
	for {
		chunk, isPrefix, err = r.ReadLine()
		if !tooLong {
			if len(buf)+len(chunk) > maxQuestionBytes {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if err != nil {
			return string(buf), tooLong, err
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func reportError(out io.Writer, opts replOptions, err error) {
	loggerpkg.Error(opts.Logger, "question failed", map[string]any{
		"reason": string(errorsx.Reason(err)),
		"error":  err.Error(),
	})
	_, _ = fmt.Fprintf(out, "Error: %v\n", err)
}

func printAnswer(out io.Writer, answer string) {
	_, _ = fmt.Fprintln(out, separator)
	_, _ = fmt.Fprintln(out, "BOT: "+answer)
	_, _ = fmt.Fprintln(out, separator)
}
