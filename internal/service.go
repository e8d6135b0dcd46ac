package internal

import (
	"context"
	"fmt"
	"io"
	"time"
)

// UseCases bundles the operations shared by the CLI, the MCP server and the Go client.
type UseCases struct {
	SetReminder *SetReminderUseCase
	ListPending *ListPendingUseCase
	ViewLog     *ViewLogUseCase
}

// Services is the wired object graph for one process.
type Services struct {
	Config *Config
	Log    *Logger
	Store  *JSONStore
	Guard  *Guard
	Parser *Parser
	UseCases
}

type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	now        func() time.Time
	procs      ProcessTable
	spawner    Spawner
	daemonArgs []string
	autoStart  bool
	fallback   Interpreter
}

func WithClock(now func() time.Time) ServiceOption {
	return func(c *serviceConfig) {
		c.now = now
	}
}

func WithProcessTable(p ProcessTable) ServiceOption {
	return func(c *serviceConfig) {
		c.procs = p
	}
}

func WithSpawner(s Spawner) ServiceOption {
	return func(c *serviceConfig) {
		c.spawner = s
	}
}

// WithDaemonArgs passes extra arguments to a spawned daemon, e.g. the config path.
func WithDaemonArgs(args ...string) ServiceOption {
	return func(c *serviceConfig) {
		c.daemonArgs = args
	}
}

// WithAutoStart controls whether saving a reminder starts the daemon.
func WithAutoStart(on bool) ServiceOption {
	return func(c *serviceConfig) {
		c.autoStart = on
	}
}

// WithInterpreter replaces the free-text fallback built from the configuration.
func WithInterpreter(i Interpreter) ServiceOption {
	return func(c *serviceConfig) {
		c.fallback = i
	}
}

func NewServices(ctx context.Context, cfg *Config, log *Logger, opts ...ServiceOption) (*Services, error) {
	sc := &serviceConfig{
		now:       time.Now,
		procs:     SystemProcesses{},
		autoStart: true,
	}
	for _, opt := range opts {
		opt(sc)
	}
	if log == nil {
		log = NewNopLogger()
	}

	if sc.fallback == nil {
		fallback, err := newFallback(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		sc.fallback = fallback
	}

	if sc.spawner == nil {
		spawner, err := NewExecSpawner(sc.daemonArgs...)
		if err != nil {
			return nil, err
		}
		sc.spawner = spawner
	}

	parser := NewParser(
		WithFallback(sc.fallback),
		WithDefaultHour(cfg.Parser.Hour),
		WithParserLogger(log),
	)
	store := NewJSONStore(cfg.StorePath(), log)
	guard := NewGuard(cfg.LockPath(), cfg.Daemon.Name, sc.procs, sc.spawner, log)

	var starter DaemonStarter
	if sc.autoStart {
		starter = guard
	}

	return &Services{
		Config: cfg,
		Log:    log,
		Store:  store,
		Guard:  guard,
		Parser: parser,
		UseCases: UseCases{
			SetReminder: NewSetReminderUseCase(parser, store, starter, log, sc.now),
			ListPending: NewListPendingUseCase(store, sc.now),
			ViewLog:     NewViewLogUseCase(),
		},
	}, nil
}

// NewDaemon builds the polling daemon. Console notifications go to out when enabled.
func (s *Services) NewDaemon(out io.Writer) *Daemon {
	return NewDaemon(s.Store, NewNotifier(s.Config.Notify, out),
		WithInterval(s.Config.Daemon.Interval),
		WithDeliveryTimeout(s.Config.Notify.Timeout),
		WithDaemonLogger(s.Log),
	)
}

func (s *Services) Close() error {
	return s.Log.Close()
}

func newFallback(ctx context.Context, cfg LLMConfig) (Interpreter, error) {
	natural := NewNaturalInterpreter()
	if cfg.Provider == "" {
		return natural, nil
	}

	provider, err := NewFantasyProvider(ctx, FantasyConfig{
		Provider: cfg.Provider,
		APIKey:   cfg.Key,
		BaseURL:  cfg.URL,
		Model:    cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("llm fallback: %w", err)
	}
	return ChainInterpreter{natural, NewLLMInterpreter(provider)}, nil
}
