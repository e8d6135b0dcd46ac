package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/gen2brain/beeep"
	"golang.org/x/time/rate"
)

// Notifier shows a reminder message to the user. Implementations return an error instead of
// panicking; the daemon logs it and moves on.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// DesktopNotifier raises a native desktop notification.
type DesktopNotifier struct {
	title string
	send  func(title, message string) error
}

func NewDesktopNotifier(title string) *DesktopNotifier {
	return &DesktopNotifier{
		title: title,
		send: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
}

// Notify returns when the platform call finishes or ctx is done, whichever is first.
func (n *DesktopNotifier) Notify(ctx context.Context, message string) error {
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("desktop notification panicked: %v", r)
			}
		}()
		done <- n.send(n.title, message)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("desktop notification: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("desktop notification: %w", ctx.Err())
	}
}

var reminderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))

// ConsoleNotifier prints "Reminder: <message>" to a terminal.
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	return &ConsoleNotifier{out: out}
}

func (n *ConsoleNotifier) Notify(_ context.Context, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, err := fmt.Fprintln(n.out, reminderStyle.Render("Reminder: "+message))
	return err
}

// MultiNotifier delivers to every sink and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ThrottledNotifier limits how fast a burst of due reminders reaches the wrapped sink.
type ThrottledNotifier struct {
	next    Notifier
	limiter *rate.Limiter
}

func NewThrottledNotifier(next Notifier, perSecond float64, burst int) *ThrottledNotifier {
	return &ThrottledNotifier{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (t *ThrottledNotifier) Notify(ctx context.Context, message string) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("throttle: %w", err)
	}
	return t.next.Notify(ctx, message)
}

// NewNotifier builds the sink chain described by cfg. Console output goes to out.
func NewNotifier(cfg NotifyConfig, out io.Writer) Notifier {
	var sinks MultiNotifier
	if cfg.Desktop {
		sinks = append(sinks, NewDesktopNotifier(cfg.Title))
	}
	if cfg.Console && out != nil {
		sinks = append(sinks, NewConsoleNotifier(out))
	}
	return NewThrottledNotifier(sinks, cfg.Rate, cfg.Burst)
}
