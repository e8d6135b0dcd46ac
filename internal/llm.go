package internal

import (
	"context"
	"time"
)

// Interpreter resolves free text to an instant when no structured time component matched.
type Interpreter interface {
	Interpret(ctx context.Context, text string, now time.Time) (*Interpretation, error)
}

// Interpretation is a fallback result. Text is the span of the input that expressed the time,
// or empty when the interpreter cannot point at one.
type Interpretation struct {
	Time time.Time
	Text string
}

type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
