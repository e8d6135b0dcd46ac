package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

type FantasyConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

var _ Provider = (*FantasyProvider)(nil)

type FantasyProvider struct {
	model fantasy.LanguageModel
}

func NewFantasyProvider(ctx context.Context, cfg FantasyConfig) (*FantasyProvider, error) {
	var provider fantasy.Provider
	var err error

	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider, err = openai.New(opts...)

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case "openrouter":
		opts := []openrouter.Option{openrouter.WithAPIKey(cfg.APIKey)}
		provider, err = openrouter.New(opts...)

	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}

	return &FantasyProvider{model: model}, nil
}

func (p *FantasyProvider) Complete(ctx context.Context, prompt string) (string, error) {
	agent := fantasy.NewAgent(p.model)

	result, err := agent.Generate(ctx, fantasy.AgentCall{
		Prompt: prompt,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	return result.Response.Content.Text(), nil
}

const interpretPrompt = `The current local time is %s.
A user wrote this reminder: %q

Work out the single moment the reminder should fire.
Answer with exactly two lines and nothing else:
line 1: the moment in RFC 3339 format with the same UTC offset as the current time
line 2: the exact words from the reminder that say when

If the reminder does not say when, answer with the single word NONE.`

var _ Interpreter = (*LLMInterpreter)(nil)

// LLMInterpreter asks a language model for the trigger time of text nothing else understood.
type LLMInterpreter struct {
	provider Provider
}

func NewLLMInterpreter(provider Provider) *LLMInterpreter {
	return &LLMInterpreter{provider: provider}
}

func (l *LLMInterpreter) Interpret(ctx context.Context, text string, now time.Time) (*Interpretation, error) {
	out, err := l.provider.Complete(ctx, fmt.Sprintf(interpretPrompt, now.Format(time.RFC3339), text))
	if err != nil {
		return nil, fmt.Errorf("llm interpret: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	first := strings.TrimSpace(lines[0])
	if first == "" || strings.EqualFold(first, "NONE") {
		return nil, ErrParseFailure
	}

	t, err := time.Parse(time.RFC3339, first)
	if err != nil {
		return nil, fmt.Errorf("llm interpret: %w", err)
	}

	interp := &Interpretation{Time: t.In(now.Location())}
	if len(lines) > 1 {
		span := strings.Trim(strings.TrimSpace(lines[1]), `"'`)
		if span != "" && strings.Contains(strings.ToLower(text), strings.ToLower(span)) {
			interp.Text = span
		}
	}
	return interp, nil
}
