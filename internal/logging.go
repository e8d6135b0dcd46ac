package internal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// History events. Entries carrying one of them in the "event" field are copied to the history log.
const (
	EventSaved     = "saved"
	EventTriggered = "triggered"
)

// Logger is the per-process logging context. It owns the open log files.
type Logger struct {
	*logrus.Logger
	files []*os.File
}

func NewLogger(cfg *Config) (*Logger, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	main, err := openLogFile(cfg.LogPath())
	if err != nil {
		return nil, err
	}
	history, err := openLogFile(cfg.HistoryPath())
	if err != nil {
		main.Close()
		return nil, err
	}

	l := newLogrus(main, level)
	l.AddHook(NewHistoryHook(history))

	return &Logger{Logger: l, files: []*os.File{main, history}}, nil
}

// NewNopLogger discards everything.
func NewNopLogger() *Logger {
	return &Logger{Logger: discardLogger()}
}

func (l *Logger) Close() error {
	var first error
	for _, f := range l.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	l.files = nil
	return first
}

func newLogrus(out io.Writer, level logrus.Level) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	l.SetFormatter(textFormatter())
	return l
}

func textFormatter() *logrus.TextFormatter {
	return &logrus.TextFormatter{
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	return f, nil
}

// HistoryHook writes saved and triggered events to a separate audit log.
type HistoryHook struct {
	mu        sync.Mutex
	out       io.Writer
	formatter logrus.Formatter
}

func NewHistoryHook(out io.Writer) *HistoryHook {
	return &HistoryHook{out: out, formatter: textFormatter()}
}

func (h *HistoryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.InfoLevel, logrus.WarnLevel}
}

func (h *HistoryHook) Fire(entry *logrus.Entry) error {
	event, _ := entry.Data["event"].(string)
	if event != EventSaved && event != EventTriggered {
		return nil
	}

	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.out.Write(line)
	return err
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
