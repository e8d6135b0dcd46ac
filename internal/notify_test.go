package internal

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleNotifier(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewConsoleNotifier(&buf).Notify(context.Background(), "stretch"))
	assert.Contains(t, buf.String(), "Reminder: stretch")
}

func TestDesktopNotifier(t *testing.T) {
	var gotTitle, gotMessage string
	n := &DesktopNotifier{
		title: "Reminder",
		send: func(title, message string) error {
			gotTitle, gotMessage = title, message
			return nil
		},
	}

	require.NoError(t, n.Notify(context.Background(), "call mom"))
	assert.Equal(t, "Reminder", gotTitle)
	assert.Equal(t, "call mom", gotMessage)
}

func TestDesktopNotifierError(t *testing.T) {
	n := &DesktopNotifier{send: func(string, string) error { return errors.New("no dbus") }}
	assert.ErrorContains(t, n.Notify(context.Background(), "x"), "no dbus")
}

func TestDesktopNotifierTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	n := &DesktopNotifier{send: func(string, string) error {
		<-release
		return nil
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := n.Notify(ctx, "x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDesktopNotifierPanic(t *testing.T) {
	n := &DesktopNotifier{send: func(string, string) error { panic("cgo exploded") }}
	assert.ErrorContains(t, n.Notify(context.Background(), "x"), "panicked")
}

func TestMultiNotifier(t *testing.T) {
	a := &recordingNotifier{err: errors.New("a failed")}
	b := &recordingNotifier{}

	err := MultiNotifier{a, b}.Notify(context.Background(), "hello")
	assert.ErrorContains(t, err, "a failed")
	assert.Equal(t, []string{"hello"}, a.Messages())
	assert.Equal(t, []string{"hello"}, b.Messages())

	assert.NoError(t, MultiNotifier{}.Notify(context.Background(), "nobody"))
}

func TestThrottledNotifier(t *testing.T) {
	inner := &recordingNotifier{}
	n := NewThrottledNotifier(inner, 0.001, 1)

	require.NoError(t, n.Notify(context.Background(), "first"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, n.Notify(ctx, "second"))
	assert.Equal(t, []string{"first"}, inner.Messages())
}

func TestNewNotifierConsoleOnly(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(NotifyConfig{Console: true, Rate: 10, Burst: 5}, &buf)

	require.NoError(t, n.Notify(context.Background(), "tea"))
	assert.Contains(t, buf.String(), "Reminder: tea")
}
