package internal

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultPollInterval    = time.Second
	DefaultDeliveryTimeout = 10 * time.Second
)

// Daemon polls the store and fires every due reminder exactly once.
type Daemon struct {
	store    ReminderRepository
	notifier Notifier
	log      logrus.FieldLogger
	interval time.Duration
	timeout  time.Duration
	now      func() time.Time
}

type DaemonOption func(*Daemon)

func WithInterval(d time.Duration) DaemonOption {
	return func(dm *Daemon) {
		dm.interval = d
	}
}

// WithDeliveryTimeout bounds a single notifier call.
func WithDeliveryTimeout(d time.Duration) DaemonOption {
	return func(dm *Daemon) {
		dm.timeout = d
	}
}

func WithDaemonClock(now func() time.Time) DaemonOption {
	return func(dm *Daemon) {
		dm.now = now
	}
}

func WithDaemonLogger(log logrus.FieldLogger) DaemonOption {
	return func(dm *Daemon) {
		dm.log = log
	}
}

func NewDaemon(store ReminderRepository, notifier Notifier, opts ...DaemonOption) *Daemon {
	d := &Daemon{
		store:    store,
		notifier: notifier,
		log:      discardLogger(),
		interval: DefaultPollInterval,
		timeout:  DefaultDeliveryTimeout,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run ticks immediately and then once per interval, sleeping only after a tick completes.
// It returns nil when ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.interval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", d.interval)
	}

	d.log.WithField("interval", d.interval.String()).Info("Reminder notifier started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("Reminder notifier stopped")
			return nil
		case <-timer.C:
			d.safeTick(ctx)
			timer.Reset(d.interval)
		}
	}
}

func (d *Daemon) safeTick(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			d.log.WithField("panic", r).Error("Unexpected error in reminder loop")
		}
	}()

	if _, err := d.Tick(ctx); err != nil {
		d.log.WithError(err).Error("Reminder check failed")
	}
}

// Tick loads the store, delivers every due reminder, and saves the rest. It reports how many
// reminders fired. A failed delivery still counts as fired and the record is dropped.
func (d *Daemon) Tick(ctx context.Context) (int, error) {
	storeCtx := context.WithoutCancel(ctx)

	reminders, err := d.store.Load(storeCtx)
	if err != nil {
		return 0, fmt.Errorf("load reminders: %w", err)
	}

	now := d.now()
	pending := make([]Reminder, 0, len(reminders))
	fired := 0

	for _, r := range reminders {
		if !r.Due(now) {
			pending = append(pending, r)
			continue
		}
		d.deliver(storeCtx, r)
		fired++
	}

	if err := d.store.Save(storeCtx, pending); err != nil {
		return fired, fmt.Errorf("save reminders: %w", err)
	}
	return fired, nil
}

func (d *Daemon) deliver(ctx context.Context, r Reminder) {
	defer func() {
		if p := recover(); p != nil {
			d.log.WithFields(logrus.Fields{
				"message": r.Message,
				"panic":   p,
			}).Error("Notification panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.notifier.Notify(ctx, r.Message); err != nil {
		d.log.WithFields(logrus.Fields{
			"message": r.Message,
			"error":   err,
		}).Error("Failed to show notification")
	}

	d.log.WithFields(logrus.Fields{
		"event":        EventTriggered,
		"message":      r.Message,
		"trigger_time": r.TriggerAt.Format(time.RFC3339),
	}).Infof("Triggered: '%s'", r.Message)
}
