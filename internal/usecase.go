package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Use case input/output DTOs

type SetReminderInput struct {
	Text        string
	FullCommand string
	DryRun      bool
}

type SetReminderOutput struct {
	Reminder       Reminder
	TimeExpression string
	Adjusted       bool // moved from earlier today to tomorrow
	DaemonStarted  bool
	DaemonPID      int
}

type ListPendingInput struct{}

type PendingReminder struct {
	Reminder
	Until string
}

type ListPendingOutput struct {
	Now       time.Time
	Reminders []PendingReminder
}

type ViewLogInput struct {
	Path  string
	Lines int
}

type ViewLogOutput struct {
	Path   string
	Exists bool
	Lines  []string
	Offset int64 // file size when read, the starting point for following
}

// DaemonStarter makes sure a daemon will pick up newly saved reminders.
type DaemonStarter interface {
	EnsureDaemon(ctx context.Context) (started bool, pid int, err error)
}

// Use cases

type SetReminderUseCase struct {
	parser *Parser
	store  ReminderRepository
	daemon DaemonStarter
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewSetReminderUseCase(
	parser *Parser,
	store ReminderRepository,
	daemon DaemonStarter,
	log logrus.FieldLogger,
	now func() time.Time,
) *SetReminderUseCase {
	if log == nil {
		log = discardLogger()
	}
	if now == nil {
		now = time.Now
	}
	return &SetReminderUseCase{
		parser: parser,
		store:  store,
		daemon: daemon,
		log:    log,
		now:    now,
	}
}

// Execute parses the text, persists the reminder and makes sure a daemon is running.
// When the daemon cannot be started the reminder is still saved: the output is returned
// together with an error wrapping ErrDaemonSpawn.
func (uc *SetReminderUseCase) Execute(ctx context.Context, input SetReminderInput) (*SetReminderOutput, error) {
	now := uc.now()
	uc.log.WithField("text", input.Text).Infof("Reminder requested with input: '%s'", input.Text)

	parsed, err := uc.parser.Parse(ctx, input.Text, now)
	if err != nil {
		uc.log.WithFields(logrus.Fields{"text": input.Text, "error": err}).Errorf("Failed to parse reminder: '%s'", input.Text)
		return nil, err
	}

	trigger, adjusted, err := EnsureFuture(parsed.TriggerTime, now, parsed.Source)
	if err != nil {
		uc.log.WithField("trigger_time", parsed.TriggerTime.Format(time.RFC3339)).Error("Trigger time in the past")
		return nil, err
	}
	if adjusted {
		uc.log.WithField("trigger_time", trigger.Format(time.RFC3339)).Info("Adjusted past time to next day")
	}

	origin := input.FullCommand
	if origin == "" {
		origin = input.Text
	}

	out := &SetReminderOutput{
		Reminder:       NewReminder(parsed.Message, origin, now, trigger),
		TimeExpression: parsed.TimeExpression,
		Adjusted:       adjusted,
	}
	if input.DryRun {
		return out, nil
	}

	if err := uc.store.Append(ctx, out.Reminder); err != nil {
		return nil, fmt.Errorf("save reminder: %w", err)
	}

	uc.log.WithFields(logrus.Fields{
		"event":        EventSaved,
		"message":      out.Reminder.Message,
		"trigger_time": trigger.Format(time.RFC3339),
	}).Infof("Reminder saved to trigger at %s: '%s'", trigger.Format(expressionLayout), out.Reminder.Message)

	if uc.daemon == nil {
		return out, nil
	}

	started, pid, err := uc.daemon.EnsureDaemon(ctx)
	if err != nil {
		return out, err
	}
	out.DaemonStarted, out.DaemonPID = started, pid
	return out, nil
}

type ListPendingUseCase struct {
	store ReminderRepository
	now   func() time.Time
}

func NewListPendingUseCase(store ReminderRepository, now func() time.Time) *ListPendingUseCase {
	if now == nil {
		now = time.Now
	}
	return &ListPendingUseCase{store: store, now: now}
}

// Execute returns the stored reminders ordered by trigger time.
func (uc *ListPendingUseCase) Execute(ctx context.Context, _ ListPendingInput) (*ListPendingOutput, error) {
	reminders, err := uc.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}

	sort.SliceStable(reminders, func(i, j int) bool {
		return reminders[i].TriggerAt.Before(reminders[j].TriggerAt)
	})

	now := uc.now()
	out := &ListPendingOutput{Now: now, Reminders: make([]PendingReminder, 0, len(reminders))}
	for _, r := range reminders {
		out.Reminders = append(out.Reminders, PendingReminder{
			Reminder: r,
			Until:    FormatTimeUntil(r.TriggerAt.Sub(now)),
		})
	}
	return out, nil
}

type ViewLogUseCase struct{}

func NewViewLogUseCase() *ViewLogUseCase {
	return &ViewLogUseCase{}
}

// Execute returns the last input.Lines lines of the log. A missing file is not an error.
func (uc *ViewLogUseCase) Execute(ctx context.Context, input ViewLogInput) (*ViewLogOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := &ViewLogOutput{Path: input.Path}

	info, err := os.Stat(input.Path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	out.Exists = true
	out.Offset = info.Size()

	lines, err := TailLines(input.Path, input.Lines)
	if err != nil {
		return nil, err
	}
	out.Lines = lines
	return out, nil
}
