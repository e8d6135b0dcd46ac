package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

var _ Interpreter = (*NaturalInterpreter)(nil)

// NaturalInterpreter understands casual English such as "next friday" or "noon".
type NaturalInterpreter struct {
	w *when.Parser
}

func NewNaturalInterpreter() *NaturalInterpreter {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &NaturalInterpreter{w: w}
}

func (n *NaturalInterpreter) Interpret(_ context.Context, text string, now time.Time) (*Interpretation, error) {
	r, err := n.w.Parse(text, now)
	if err != nil {
		return nil, fmt.Errorf("interpret: %w", err)
	}
	if r == nil {
		return nil, ErrParseFailure
	}
	return &Interpretation{Time: r.Time, Text: r.Text}, nil
}

// ChainInterpreter returns the first successful interpretation of its members.
type ChainInterpreter []Interpreter

func (c ChainInterpreter) Interpret(ctx context.Context, text string, now time.Time) (*Interpretation, error) {
	var errs []error
	for _, i := range c {
		if i == nil {
			continue
		}
		out, err := i.Interpret(ctx, text, now)
		if err == nil && out != nil {
			return out, nil
		}
		if err == nil {
			err = ErrParseFailure
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, ErrParseFailure
	}
	return nil, errors.Join(errs...)
}
