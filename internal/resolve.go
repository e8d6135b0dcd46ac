package internal

import (
	"fmt"
	"math"
	"time"
)

// TriggerSource names the kind of expression that drove a resolution.
type TriggerSource int

const (
	SourceInterval TriggerSource = iota + 1
	SourceDateTime
	SourceClock
	SourceDate
	SourceFreeText
)

// Resolution is the trigger time chosen from a component set and the text that drove it.
type Resolution struct {
	Trigger    time.Time
	Expression string
	Source     TriggerSource
}

const expressionLayout = "2006-01-02 15:04:05"

// Resolve applies the precedence rules to c: interval, then date with clock, then clock alone,
// then date alone. It returns (nil, nil) when c holds nothing that can drive a trigger time, and
// ErrParseFailure when a detected clock or date does not name a real instant.
func Resolve(c Components, now time.Time, defaultHour int) (*Resolution, error) {
	if iv, ok := c.Interval(); ok {
		return resolveInterval(iv, now)
	}

	clock, hasClock := c.Clock()
	date, hasDate := c.Date()

	switch {
	case hasClock && hasDate:
		hour, minute, ok := clock.Clock()
		if !ok {
			return nil, fmt.Errorf("%w: invalid time %q", ErrParseFailure, clock.Value)
		}
		t, err := futureDate(date, hour, minute, now)
		if err != nil {
			return nil, err
		}
		return &Resolution{Trigger: t, Expression: date.Match + " " + clock.Match, Source: SourceDateTime}, nil

	case hasClock:
		hour, minute, ok := clock.Clock()
		if !ok {
			return nil, fmt.Errorf("%w: invalid time %q", ErrParseFailure, clock.Value)
		}
		t := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if offset := c.DayOffset(); offset > 0 {
			t = t.AddDate(0, 0, offset)
		} else if !t.After(now) {
			t = t.AddDate(0, 0, 1)
		}
		return &Resolution{Trigger: t, Expression: clock.Match, Source: SourceClock}, nil

	case hasDate:
		t, err := futureDate(date, defaultHour, 0, now)
		if err != nil {
			return nil, err
		}
		return &Resolution{Trigger: t, Expression: date.Match, Source: SourceDate}, nil
	}

	return nil, nil
}

func resolveInterval(iv Interval, now time.Time) (*Resolution, error) {
	if iv.Amount < 0 || iv.Seconds <= 0 {
		return nil, fmt.Errorf("%w: invalid interval %q", ErrParseFailure, iv.Match)
	}
	if iv.Amount > math.MaxInt64/(iv.Seconds*int64(time.Second)) {
		return nil, fmt.Errorf("%w: interval %q is too large", ErrParseFailure, iv.Match)
	}
	d := time.Duration(iv.Amount*iv.Seconds) * time.Second
	return &Resolution{Trigger: now.Add(d), Expression: iv.Match, Source: SourceInterval}, nil
}

// futureDate places date at hour:minute. Without an explicit year the current year is used and,
// if that moment is not after now, the following year.
func futureDate(date CalendarDate, hour, minute int, now time.Time) (time.Time, error) {
	if date.Year != 0 {
		t, ok := date.In(date.Year, hour, minute, now.Location())
		if !ok {
			return time.Time{}, fmt.Errorf("%w: no such date %q", ErrParseFailure, date.Match)
		}
		return t, nil
	}

	t, ok := date.In(now.Year(), hour, minute, now.Location())
	if ok && t.After(now) {
		return t, nil
	}
	t, ok = date.In(now.Year()+1, hour, minute, now.Location())
	if !ok {
		return time.Time{}, fmt.Errorf("%w: no such date %q", ErrParseFailure, date.Match)
	}
	return t, nil
}

// EnsureFuture rejects a trigger that is not after now. Interval triggers are offsets from now
// and are kept as they are. A clock or free-text trigger earlier today, other than exactly
// midnight, is moved to the same time tomorrow instead. Explicit dates are never moved.
func EnsureFuture(trigger, now time.Time, source TriggerSource) (time.Time, bool, error) {
	if trigger.After(now) {
		return trigger, false, nil
	}
	if source == SourceInterval && !trigger.Before(now) {
		return trigger, false, nil
	}
	if source != SourceClock && source != SourceFreeText {
		return time.Time{}, false, fmt.Errorf("%w: %s", ErrPastTrigger, trigger.Format(expressionLayout))
	}
	ty, tm, td := trigger.Date()
	ny, nm, nd := now.Date()
	sameDay := ty == ny && tm == nm && td == nd
	midnight := trigger.Hour() == 0 && trigger.Minute() == 0
	if sameDay && !midnight {
		return trigger.AddDate(0, 0, 1), true, nil
	}
	return time.Time{}, false, fmt.Errorf("%w: %s", ErrPastTrigger, trigger.Format(expressionLayout))
}
