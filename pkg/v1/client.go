package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/4thel00z/remindme/internal"
)

// Client provides programmatic access to the reminder store.
type Client struct {
	svc *internal.Services
}

// New creates a new Client with the given options.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{now: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}

	conf, err := internal.LoadConfig(cfg.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.dir != "" {
		conf.Dir = cfg.dir
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := internal.NewLogger(conf)
	if err != nil {
		return nil, fmt.Errorf("open logs: %w", err)
	}

	svcOpts := []internal.ServiceOption{
		internal.WithClock(cfg.now),
		internal.WithAutoStart(cfg.autoStart),
	}
	if cfg.autoStart {
		var args []string
		if cfg.configFile != "" {
			args = []string{"--config", cfg.configFile}
		}
		spawner, err := internal.NewPathSpawner(conf.Daemon.Name, args...)
		if err != nil {
			log.Close()
			return nil, err
		}
		svcOpts = append(svcOpts, internal.WithSpawner(spawner))
	} else {
		svcOpts = append(svcOpts, internal.WithSpawner(noSpawner{}))
	}

	svc, err := internal.NewServices(context.Background(), conf, log, svcOpts...)
	if err != nil {
		log.Close()
		return nil, err
	}

	return &Client{svc: svc}, nil
}

// Parse reports how text would be understood without saving anything.
func (c *Client) Parse(ctx context.Context, text string) (*Parsed, error) {
	out, err := c.svc.SetReminder.Execute(ctx, internal.SetReminderInput{Text: text, DryRun: true})
	if err != nil {
		return nil, err
	}
	return &Parsed{
		Message:        out.Reminder.Message,
		TriggerTime:    out.Reminder.TriggerAt,
		TimeExpression: out.TimeExpression,
	}, nil
}

// Add parses text and saves the reminder. With auto start enabled a daemon is started
// when none is running; a failure to start it is returned along with the saved reminder.
func (c *Client) Add(ctx context.Context, text string) (*Reminder, error) {
	out, err := c.svc.SetReminder.Execute(ctx, internal.SetReminderInput{Text: text})
	if out == nil {
		return nil, fmt.Errorf("add: %w", err)
	}
	return toReminder(out.Reminder), err
}

// Pending returns the stored reminders ordered by trigger time.
func (c *Client) Pending(ctx context.Context) ([]Reminder, error) {
	out, err := c.svc.ListPending.Execute(ctx, internal.ListPendingInput{})
	if err != nil {
		return nil, err
	}

	reminders := make([]Reminder, 0, len(out.Reminders))
	for _, r := range out.Reminders {
		reminders = append(reminders, *toReminder(r.Reminder))
	}
	return reminders, nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return c.svc.Close()
}

func toReminder(r internal.Reminder) *Reminder {
	return &Reminder{
		Message:     r.Message,
		TriggerTime: r.TriggerAt,
		CreatedAt:   r.CreatedAt,
		FullCommand: r.OriginText,
	}
}

// noSpawner keeps NewServices from resolving an executable when auto start is off.
type noSpawner struct{}

func (noSpawner) Spawn(context.Context) (int, error) {
	return 0, internal.ErrDaemonSpawn
}
