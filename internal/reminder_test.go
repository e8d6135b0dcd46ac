package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReminderDefaultsMessage(t *testing.T) {
	r := NewReminder("  ", "remindme at 5pm", testNow, testNow.Add(time.Hour))
	assert.Equal(t, DefaultMessage, r.Message)
	assert.Equal(t, "remindme at 5pm", r.OriginText)
}

func TestReminderDue(t *testing.T) {
	r := NewReminder("x", "x", testNow, testNow)
	assert.True(t, r.Due(testNow))
	assert.True(t, r.Due(testNow.Add(time.Second)))
	assert.False(t, r.Due(testNow.Add(-time.Second)))
}

func TestReminderJSONKeys(t *testing.T) {
	r := NewReminder("call mom", "remindme call mom at 5pm", testNow, at(2025, 1, 1, 17, 0))

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "call mom", raw["message"])
	assert.Equal(t, "remindme call mom at 5pm", raw["full_command"])
	assert.Contains(t, raw, "timestamp")
	assert.Contains(t, raw, "trigger_time")

	var back Reminder
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, r.TriggerAt.Equal(back.TriggerAt))
	assert.True(t, r.CreatedAt.Equal(back.CreatedAt))
	assert.Equal(t, r.Message, back.Message)
}

func TestReminderAcceptsNaiveTimestamps(t *testing.T) {
	data := `{
		"timestamp": "2025-01-01T12:00:00.123456",
		"trigger_time": "2025-01-01T17:00:00",
		"message": "call mom",
		"full_command": "remindMe.py call mom at 5pm"
	}`

	var r Reminder
	require.NoError(t, json.Unmarshal([]byte(data), &r))
	assert.True(t, at(2025, 1, 1, 17, 0).Equal(r.TriggerAt))
	assert.Equal(t, time.Local, r.TriggerAt.Location())
	assert.Equal(t, 123456000, r.CreatedAt.Nanosecond())
}

func TestReminderRejectsBadTimestamp(t *testing.T) {
	var r Reminder
	err := json.Unmarshal([]byte(`{"timestamp":"yesterday","trigger_time":"2025-01-01T17:00:00","message":"x"}`), &r)
	assert.Error(t, err)
}
