package internal

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ParseResult is the outcome of a successful parse. It is never persisted.
type ParseResult struct {
	TriggerTime    time.Time
	Message        string
	TimeExpression string
	Source         TriggerSource
	Components     Components
}

// Parser turns free-form reminder text into a trigger time and a cleaned message.
type Parser struct {
	fallback    Interpreter
	defaultHour int
	log         logrus.FieldLogger
}

type ParserOption func(*Parser)

// WithFallback sets the interpreter consulted when no structured time component resolves.
// A nil interpreter disables the fallback.
func WithFallback(i Interpreter) ParserOption {
	return func(p *Parser) {
		p.fallback = i
	}
}

// WithDefaultHour sets the hour used for a date given without a clock time.
func WithDefaultHour(hour int) ParserOption {
	return func(p *Parser) {
		p.defaultHour = hour
	}
}

func WithParserLogger(log logrus.FieldLogger) ParserOption {
	return func(p *Parser) {
		p.log = log
	}
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		fallback:    NewNaturalInterpreter(),
		defaultHour: 9,
		log:         discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse parses text relative to now with the default parser.
func Parse(text string, now time.Time) (*ParseResult, error) {
	return defaultParser.Parse(context.Background(), text, now)
}

func (p *Parser) Parse(ctx context.Context, text string, now time.Time) (*ParseResult, error) {
	original := strings.TrimSpace(text)
	if original == "" {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, ErrEmptyText)
	}
	lower := strings.ToLower(original)

	components := ExtractComponents(lower)
	keywords := DetectKeywords(lower)
	p.log.WithFields(logrus.Fields{
		"text":       original,
		"components": len(components.items),
		"keywords":   keywords,
	}).Debug("Extracted time components")

	res, err := Resolve(components, now, p.defaultHour)
	if err != nil {
		return nil, err
	}

	var span string
	if res == nil {
		if p.fallback == nil {
			return nil, fmt.Errorf("%w: no time expression in %q", ErrParseFailure, original)
		}
		interp, err := p.fallback.Interpret(ctx, original, now)
		if err != nil {
			return nil, fmt.Errorf("%w: no time expression in %q", ErrParseFailure, original)
		}
		res = &Resolution{Trigger: interp.Time, Expression: interp.Time.Format(expressionLayout), Source: SourceFreeText}
		if interp.Text != "" {
			span = strings.ToLower(interp.Text)
			res.Expression = span
		}
	}

	message := ExtractMessage(original, components, keywords)
	// Free-text spans are reported with the components but never stripped from the message.
	if span != "" {
		components = components.With(FreeText{Time: res.Trigger, Match: span})
	}

	p.log.WithFields(logrus.Fields{
		"text":         original,
		"message":      message,
		"trigger_time": res.Trigger.Format(time.RFC3339),
	}).Debug("Parsed reminder")

	return &ParseResult{
		TriggerTime:    res.Trigger,
		Message:        message,
		TimeExpression: res.Expression,
		Source:         res.Source,
		Components:     components,
	}, nil
}

var (
	whitespace       = regexp.MustCompile(`\s+`)
	trailingDangling = regexp.MustCompile(`(?i)\s+(at|on|by|in|for|before)$`)
	leadingDangling  = regexp.MustCompile(`(?i)^(at|on|by|in|for|before)\s+`)
)

// ExtractMessage removes every time expression and leading filler keyword from original.
// The result is never empty.
func ExtractMessage(original string, c Components, keywords []string) string {
	message := strings.TrimSpace(original)

	var phrases []string
	for _, item := range c.items {
		switch v := item.(type) {
		case CalendarDate:
			phrases = append(phrases, `on\s+`+regexp.QuoteMeta(v.Match))
		case ClockTime:
			phrases = append(phrases, `at\s+`+regexp.QuoteMeta(v.Value))
		}
	}
	for _, item := range c.items {
		if m := item.Text(); m != "" {
			phrases = append(phrases, regexp.QuoteMeta(m))
		}
		if v, ok := item.(ClockTime); ok && v.Value != v.Match {
			phrases = append(phrases, regexp.QuoteMeta(v.Value))
		}
	}
	for _, phrase := range phrases {
		message = removePhrase(message, phrase)
	}

	for _, kw := range keywords {
		leading := regexp.MustCompile(`(?i)^\s*` + regexp.QuoteMeta(kw) + `\b\s*`)
		message = leading.ReplaceAllString(message, "")
	}

	message = strings.TrimSpace(whitespace.ReplaceAllString(message, " "))
	message = trailingDangling.ReplaceAllString(message, "")
	message = leadingDangling.ReplaceAllString(message, "")

	if message == "" {
		return DefaultMessage
	}
	return message
}

func removePhrase(s, phrase string) string {
	re := regexp.MustCompile(`(?i)\s*` + phrase + `\s*`)
	return re.ReplaceAllString(s, " ")
}
