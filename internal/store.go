package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var _ ReminderRepository = (*JSONStore)(nil)

// JSONStore keeps pending reminders as an indented JSON array in a single file.
// There is no cross-process locking: concurrent writers are last-writer-wins.
type JSONStore struct {
	path string
	log  logrus.FieldLogger
}

func NewJSONStore(path string, log logrus.FieldLogger) *JSONStore {
	if log == nil {
		log = discardLogger()
	}
	return &JSONStore{path: path, log: log}
}

func (s *JSONStore) Path() string {
	return s.path
}

// Load returns the stored reminders. A missing file is an empty store, and so is a file that
// does not hold a valid reminder array; the latter is logged as an error.
func (s *JSONStore) Load(ctx context.Context) ([]Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Reminder{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}

	var reminders []Reminder
	if err := json.Unmarshal(data, &reminders); err != nil {
		s.log.WithFields(logrus.Fields{
			"path":  s.path,
			"error": err,
		}).Error("Error decoding reminders from JSON store. Check file.")
		return []Reminder{}, nil
	}
	if reminders == nil {
		reminders = []Reminder{}
	}
	return reminders, nil
}

// Save replaces the whole file with reminders.
func (s *JSONStore) Save(ctx context.Context, reminders []Reminder) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reminders == nil {
		reminders = []Reminder{}
	}

	data, err := json.MarshalIndent(reminders, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal reminders: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reminders-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

func (s *JSONStore) Append(ctx context.Context, r Reminder) error {
	reminders, err := s.Load(ctx)
	if err != nil {
		return err
	}
	return s.Save(ctx, append(reminders, r))
}
