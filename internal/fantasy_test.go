package internal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cannedProvider struct {
	answer string
	err    error
	prompt string
}

func (p *cannedProvider) Complete(_ context.Context, prompt string) (string, error) {
	p.prompt = prompt
	return p.answer, p.err
}

func TestLLMInterpreter(t *testing.T) {
	answer := at(2025, 1, 3, 18, 0).Format(time.RFC3339) + "\nfriday evening\n"
	provider := &cannedProvider{answer: answer}

	got, err := NewLLMInterpreter(provider).Interpret(context.Background(), "call bob friday evening", testNow)
	require.NoError(t, err)
	assert.True(t, at(2025, 1, 3, 18, 0).Equal(got.Time))
	assert.Equal(t, "friday evening", got.Text)
	assert.Contains(t, provider.prompt, "call bob friday evening")
}

func TestLLMInterpreterDropsInventedSpan(t *testing.T) {
	answer := at(2025, 1, 3, 18, 0).Format(time.RFC3339) + "\nsome other words"
	got, err := NewLLMInterpreter(&cannedProvider{answer: answer}).Interpret(context.Background(), "call bob friday evening", testNow)
	require.NoError(t, err)
	assert.Empty(t, got.Text)
}

func TestLLMInterpreterFailures(t *testing.T) {
	tests := map[string]*cannedProvider{
		"none":    {answer: "NONE"},
		"garbage": {answer: "whenever you like"},
		"error":   {err: errors.New("rate limited")},
	}

	for name, provider := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLLMInterpreter(provider).Interpret(context.Background(), "buy milk", testNow)
			assert.Error(t, err)
		})
	}
}

func TestNewFantasyProviderUnsupported(t *testing.T) {
	_, err := NewFantasyProvider(context.Background(), FantasyConfig{Provider: "ouija"})
	assert.ErrorContains(t, err, "unsupported provider")
}
