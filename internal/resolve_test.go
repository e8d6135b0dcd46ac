package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractComponents(t *testing.T) {
	c := ExtractComponents("lunch with sam tomorrow at 1:15pm on 3rd of june 2026 in 2 hours")

	iv, ok := c.Interval()
	require.True(t, ok)
	assert.Equal(t, int64(2), iv.Amount)
	assert.Equal(t, int64(3600), iv.Seconds)

	clock, ok := c.Clock()
	require.True(t, ok)
	assert.True(t, clock.At)
	assert.Equal(t, "1:15pm", clock.Value)
	hour, minute, ok := clock.Clock()
	require.True(t, ok)
	assert.Equal(t, 13, hour)
	assert.Equal(t, 15, minute)

	date, ok := c.Date()
	require.True(t, ok)
	assert.Equal(t, 3, date.Day)
	assert.Equal(t, time.June, date.Month)
	assert.Equal(t, 2026, date.Year)

	assert.Equal(t, 1, c.DayOffset())
	assert.Len(t, c.All(), 4)
}

func TestComponentsPreferAtClock(t *testing.T) {
	c := ExtractComponents("call at 5pm not 6pm")
	clock, ok := c.Clock()
	require.True(t, ok)
	assert.Equal(t, "5pm", clock.Value)

	c = ExtractComponents("call 5pm or 6pm")
	clock, ok = c.Clock()
	require.True(t, ok)
	assert.Equal(t, "6pm", clock.Value)
}

func TestComponentsEmpty(t *testing.T) {
	c := ExtractComponents("water the plants")
	assert.True(t, c.Empty())
	assert.Zero(t, c.DayOffset())

	res, err := Resolve(c, testNow, 9)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestComponentsWithDoesNotMutate(t *testing.T) {
	c := ExtractComponents("at 5pm")
	extended := c.With(FreeText{Match: "soon"})
	assert.Len(t, c.All(), 1)
	assert.Len(t, extended.All(), 2)
}

func TestClockConversion(t *testing.T) {
	tests := []struct {
		clock  ClockTime
		hour   int
		minute int
		ok     bool
	}{
		{ClockTime{Hour: 12, Meridiem: "am"}, 0, 0, true},
		{ClockTime{Hour: 12, Meridiem: "pm"}, 12, 0, true},
		{ClockTime{Hour: 9, Minute: 5, Meridiem: "am"}, 9, 5, true},
		{ClockTime{Hour: 11, Minute: 59, Meridiem: "pm"}, 23, 59, true},
		{ClockTime{Hour: 0, Meridiem: "am"}, 0, 0, false},
		{ClockTime{Hour: 7, Minute: 60, Meridiem: "pm"}, 0, 0, false},
	}

	for _, tt := range tests {
		hour, minute, ok := tt.clock.Clock()
		assert.Equal(t, tt.ok, ok, "%+v", tt.clock)
		if tt.ok {
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		}
	}
}

func TestDetectKeywords(t *testing.T) {
	assert.Equal(t, []string{"later", "at", "by"}, DetectKeywords("later at home by 5pm"))
	assert.Empty(t, DetectKeywords("attend the board meeting"))
}

func TestResolveExplicitYearIsKept(t *testing.T) {
	res, err := Resolve(ExtractComponents("party on 1 march 2020 at 5pm"), testNow, 9)
	require.NoError(t, err)
	assert.True(t, at(2020, 3, 1, 17, 0).Equal(res.Trigger))
}

func TestResolveLeapDay(t *testing.T) {
	res, err := Resolve(ExtractComponents("on 29 february"), testNow, 9)
	require.Error(t, err)
	assert.Nil(t, res)

	res, err = Resolve(ExtractComponents("on 29 february 2028"), testNow, 9)
	require.NoError(t, err)
	assert.True(t, at(2028, 2, 29, 9, 0).Equal(res.Trigger))
}

func TestResolveIntervalOverflow(t *testing.T) {
	_, err := Resolve(ExtractComponents("in 99999999999999 years"), testNow, 9)
	assert.ErrorIs(t, err, ErrParseFailure)
}

func TestEnsureFuture(t *testing.T) {
	future := at(2025, 1, 1, 13, 0)
	got, adjusted, err := EnsureFuture(future, testNow, SourceDate)
	require.NoError(t, err)
	assert.False(t, adjusted)
	assert.Equal(t, future, got)

	tests := []struct {
		name     string
		trigger  time.Time
		source   TriggerSource
		want     time.Time
		adjusted bool
		err      error
	}{
		{"clock earlier today", at(2025, 1, 1, 11, 0), SourceClock, at(2025, 1, 2, 11, 0), true, nil},
		{"free text earlier today", at(2025, 1, 1, 11, 0), SourceFreeText, at(2025, 1, 2, 11, 0), true, nil},
		{"free text now", testNow, SourceFreeText, testNow.AddDate(0, 0, 1), true, nil},
		{"midnight today", at(2025, 1, 1, 0, 0), SourceFreeText, time.Time{}, false, ErrPastTrigger},
		{"yesterday", at(2024, 12, 31, 18, 0), SourceFreeText, time.Time{}, false, ErrPastTrigger},
		{"explicit date earlier today", at(2025, 1, 1, 11, 0), SourceDateTime, time.Time{}, false, ErrPastTrigger},
		{"date only earlier today", at(2025, 1, 1, 9, 0), SourceDate, time.Time{}, false, ErrPastTrigger},
		{"zero interval", testNow, SourceInterval, testNow, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, adjusted, err := EnsureFuture(tt.trigger, testNow, tt.source)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.adjusted, adjusted)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}
