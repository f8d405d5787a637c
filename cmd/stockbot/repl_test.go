package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minhyannv/stockbot-go/pkg/agent"
	loggerpkg "github.com/minhyannv/stockbot-go/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAsker struct {
	AskFn func(ctx context.Context, question string) (agent.Result, error)
	asked []string
}

func (f *fakeAsker) Ask(ctx context.Context, question string) (agent.Result, error) {
	f.asked = append(f.asked, question)
	return f.AskFn(ctx, question)
}

func echoAsker() *fakeAsker {
	return &fakeAsker{AskFn: func(_ context.Context, q string) (agent.Result, error) {
		return agent.Result{Answer: "answer to " + q, State: agent.Done}, nil
	}}
}

func TestREPLExitIsCaseInsensitive(t *testing.T) {
	for _, word := range []string{"exit", "Exit", "EXIT", "exit\r"} {
		bot := echoAsker()
		var out bytes.Buffer

		err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader(word+"\nnever asked\n"), &out)
		require.NoError(t, err)
		assert.Empty(t, bot.asked, word)
		assert.Equal(t, inputPrompt+goodbye+"\n", out.String())
	}
}

func TestREPLPrintsAnswerBetweenSeparators(t *testing.T) {
	bot := echoAsker()
	var out bytes.Buffer

	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader("How is Nvidia?\nexit\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"How is Nvidia?"}, bot.asked)
	want := inputPrompt +
		separator + "\n" +
		"BOT: answer to How is Nvidia?\n" +
		separator + "\n" +
		inputPrompt + goodbye + "\n"
	assert.Equal(t, want, out.String())
	assert.Len(t, separator, 56)
}

func TestREPLExitMustMatchWholeLine(t *testing.T) {
	bot := echoAsker()
	var out bytes.Buffer

	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader("  exit  \nexit now\nexit\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"exit", "exit now"}, bot.asked)
	assert.True(t, strings.HasSuffix(out.String(), inputPrompt+goodbye+"\n"))
}

func TestREPLReadsLongQuestions(t *testing.T) {
	bot := echoAsker()
	var out bytes.Buffer
	long := strings.Repeat("a", 70*1024)

	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader(long+"\nsecond\nexit\n"), &out)
	require.NoError(t, err)
	require.Len(t, bot.asked, 2)
	assert.Len(t, bot.asked[0], 70*1024)
	assert.Equal(t, "second", bot.asked[1])
	assert.True(t, strings.HasSuffix(out.String(), goodbye+"\n"))
}

func TestREPLRejectsOversizedQuestionAndContinues(t *testing.T) {
	bot := echoAsker()
	var out bytes.Buffer
	huge := strings.Repeat("a", maxQuestionBytes+1)

	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader(huge+"\nsecond\nexit\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, []string{"second"}, bot.asked)
	assert.Contains(t, out.String(), "Error: "+errQuestionTooLong.Error()+"\n")
	assert.Contains(t, out.String(), "BOT: answer to second\n")
	assert.True(t, strings.HasSuffix(out.String(), goodbye+"\n"))
}

func TestREPLLastLineWithoutNewline(t *testing.T) {
	bot := echoAsker()
	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader("first\nlast"), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "last"}, bot.asked)
}

func TestREPLBlankInputReprompts(t *testing.T) {
	bot := echoAsker()
	var out bytes.Buffer

	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader("\n   \nexit\n"), &out)
	require.NoError(t, err)
	assert.Empty(t, bot.asked)
	assert.Equal(t, 3, strings.Count(out.String(), inputPrompt))
}

func TestREPLSurvivesFailedQuestion(t *testing.T) {
	calls := 0
	bot := &fakeAsker{AskFn: func(_ context.Context, q string) (agent.Result, error) {
		calls++
		if calls == 1 {
			return agent.Result{}, errors.New("unknown tool: get_weather")
		}
		return agent.Result{Answer: "ok"}, nil
	}}
	var out, logs bytes.Buffer

	opts := replOptions{Logger: loggerpkg.NewWriterLogger(&logs, "info")}
	err := runREPL(context.Background(), bot, opts, strings.NewReader("first\nsecond\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "second"}, bot.asked)
	assert.Contains(t, out.String(), "Error: unknown tool: get_weather\n")
	assert.Contains(t, out.String(), "BOT: ok\n")
	assert.Contains(t, logs.String(), "question failed")
}

func TestREPLEndOfInputReturns(t *testing.T) {
	bot := echoAsker()
	err := runREPL(context.Background(), bot, replOptions{}, strings.NewReader(""), nil)
	assert.NoError(t, err)
	assert.Empty(t, bot.asked)
}

func TestREPLRequiresDependencies(t *testing.T) {
	assert.Error(t, runREPL(context.Background(), nil, replOptions{}, strings.NewReader(""), nil))
	assert.Error(t, runREPL(context.Background(), echoAsker(), replOptions{}, nil, nil))
}
