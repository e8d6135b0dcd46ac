package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrParseFailure     = errors.New("could not understand the time expression")
	ErrPastTrigger      = errors.New("the specified time appears to be in the past")
	ErrEmptyText        = errors.New("reminder text is empty")
	ErrDaemonSpawn      = errors.New("failed to start reminder daemon")
	ErrDaemonNotRunning = errors.New("reminder daemon is not running")
	ErrDaemonRunning    = errors.New("reminder daemon is already running")
	ErrInvalidLock      = errors.New("invalid daemon lock")
	ErrForeignProcess   = errors.New("process is not a reminder daemon")
)

// DefaultMessage replaces a message that is empty once every time expression is removed.
const DefaultMessage = "Reminder"

// Reminder is one pending entry of the store. Records are never mutated after insertion.
type Reminder struct {
	CreatedAt  time.Time
	TriggerAt  time.Time
	Message    string
	OriginText string
}

func NewReminder(message, origin string, createdAt, triggerAt time.Time) Reminder {
	if strings.TrimSpace(message) == "" {
		message = DefaultMessage
	}
	return Reminder{
		CreatedAt:  createdAt,
		TriggerAt:  triggerAt,
		Message:    message,
		OriginText: origin,
	}
}

// Due reports whether the reminder should fire at now.
func (r Reminder) Due(now time.Time) bool {
	return !r.TriggerAt.After(now)
}

const timestampLayout = time.RFC3339Nano

// naiveLayouts cover ISO-8601 timestamps written without an offset.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

type reminderJSON struct {
	Timestamp   string `json:"timestamp"`
	TriggerTime string `json:"trigger_time"`
	Message     string `json:"message"`
	FullCommand string `json:"full_command"`
}

func (r Reminder) MarshalJSON() ([]byte, error) {
	return json.Marshal(reminderJSON{
		Timestamp:   r.CreatedAt.Format(timestampLayout),
		TriggerTime: r.TriggerAt.Format(timestampLayout),
		Message:     r.Message,
		FullCommand: r.OriginText,
	})
}

func (r *Reminder) UnmarshalJSON(data []byte) error {
	var raw reminderJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	created, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	trigger, err := parseTimestamp(raw.TriggerTime)
	if err != nil {
		return fmt.Errorf("trigger_time: %w", err)
	}

	*r = Reminder{
		CreatedAt:  created,
		TriggerAt:  trigger,
		Message:    raw.Message,
		OriginText: raw.FullCommand,
	}
	return nil
}

func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(timestampLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// ReminderRepository is the persisted list of pending reminders shared by the CLI and the daemon.
type ReminderRepository interface {
	Load(ctx context.Context) ([]Reminder, error)
	Save(ctx context.Context, reminders []Reminder) error
	Append(ctx context.Context, r Reminder) error
}
