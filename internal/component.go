package internal

import (
	"regexp"
	"strconv"
	"time"
)

// TimeComponent is one time signal found in the lower-cased reminder text.
// The concrete variants are Interval, ClockTime, CalendarDate, RelativeDay and FreeText.
type TimeComponent interface {
	// Text is the matched substring of the lower-cased input.
	Text() string
	isTimeComponent()
}

// Interval is an "in <N> <unit>" expression.
type Interval struct {
	Amount  int64
	Unit    string
	Seconds int64 // seconds per unit
	Match   string
}

// ClockTime is an "H[:MM](am|pm)" expression, optionally preceded by "at".
type ClockTime struct {
	Hour     int // as written, 1-12 when valid
	Minute   int
	Meridiem string
	At       bool
	Value    string // the time without the "at" prefix
	Match    string
}

// CalendarDate is a "D[st|nd|rd|th] [of] <Month> [Year]" expression. Year is 0 when absent.
type CalendarDate struct {
	Day   int
	Month time.Month
	Year  int
	Match string
}

// RelativeDay is one of today, tomorrow, next week, next month.
type RelativeDay struct {
	Name  string
	Days  int
	Match string
}

// FreeText is the span a fallback interpreter resolved when no structured component did.
type FreeText struct {
	Time  time.Time
	Match string
}

func (c Interval) Text() string     { return c.Match }
func (c ClockTime) Text() string    { return c.Match }
func (c CalendarDate) Text() string { return c.Match }
func (c RelativeDay) Text() string  { return c.Match }
func (c FreeText) Text() string     { return c.Match }

func (Interval) isTimeComponent()     {}
func (ClockTime) isTimeComponent()    {}
func (CalendarDate) isTimeComponent() {}
func (RelativeDay) isTimeComponent()  {}
func (FreeText) isTimeComponent()     {}

// Clock converts the written time to a 24-hour clock.
func (c ClockTime) Clock() (hour, minute int, ok bool) {
	if c.Hour < 1 || c.Hour > 12 || c.Minute < 0 || c.Minute > 59 {
		return 0, 0, false
	}
	hour = c.Hour % 12
	if c.Meridiem == "pm" {
		hour += 12
	}
	return hour, c.Minute, true
}

// In returns the date at hour:minute in loc, and false when the day does not exist in that month.
func (c CalendarDate) In(year, hour, minute int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, c.Month, c.Day, hour, minute, 0, 0, loc)
	if t.Day() != c.Day || t.Month() != c.Month {
		return time.Time{}, false
	}
	return t, true
}

var unitSeconds = map[string]int64{
	"second": 1, "sec": 1, "s": 1,
	"minute": 60, "min": 60, "m": 60,
	"hour": 3600, "hr": 3600, "h": 3600,
	"day": 86400, "d": 86400,
	"week": 604800, "w": 604800,
	"month": 2592000,
	"year": 31536000, "y": 31536000,
}

var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	clockPattern    = regexp.MustCompile(`(\bat\s+)?\b((\d{1,2})(?::(\d{2}))?\s*(am|pm))\b`)
	intervalPattern = regexp.MustCompile(`\bin\s+(\d+)\s*(second|minute|hour|day|week|month|year|sec|min|hr|s|m|h|d|w|y)s?\b`)
	datePattern     = regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b(?:\s+(\d{4})\b)?`)
)

var relativeDays = []struct {
	name    string
	days    int
	pattern *regexp.Regexp
}{
	{"today", 0, regexp.MustCompile(`\btoday\b`)},
	{"tomorrow", 1, regexp.MustCompile(`\btomorrow\b`)},
	{"next week", 7, regexp.MustCompile(`\bnext\s+week\b`)},
	{"next month", 30, regexp.MustCompile(`\bnext\s+month\b`)},
}

// Components is the immutable set of time signals extracted from one input.
type Components struct {
	items []TimeComponent
}

// ExtractComponents scans lower-cased text for every time signal. Matches may overlap in meaning;
// precedence is applied later by Resolve.
func ExtractComponents(lower string) Components {
	var items []TimeComponent

	for _, m := range clockPattern.FindAllStringSubmatch(lower, -1) {
		hour, _ := strconv.Atoi(m[3])
		minute := 0
		if m[4] != "" {
			minute, _ = strconv.Atoi(m[4])
		}
		items = append(items, ClockTime{
			Hour:     hour,
			Minute:   minute,
			Meridiem: m[5],
			At:       m[1] != "",
			Value:    m[2],
			Match:    m[0],
		})
	}

	for _, m := range intervalPattern.FindAllStringSubmatch(lower, -1) {
		amount, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			amount = -1
		}
		items = append(items, Interval{
			Amount:  amount,
			Unit:    m[2],
			Seconds: unitSeconds[m[2]],
			Match:   m[0],
		})
	}

	for _, m := range datePattern.FindAllStringSubmatch(lower, -1) {
		day, _ := strconv.Atoi(m[1])
		year := 0
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
		items = append(items, CalendarDate{
			Day:   day,
			Month: monthNames[m[2]],
			Year:  year,
			Match: m[0],
		})
	}

	for _, rd := range relativeDays {
		for _, match := range rd.pattern.FindAllString(lower, -1) {
			items = append(items, RelativeDay{Name: rd.name, Days: rd.days, Match: match})
		}
	}

	return Components{items: items}
}

// With returns a copy of c with extra appended.
func (c Components) With(extra TimeComponent) Components {
	items := make([]TimeComponent, 0, len(c.items)+1)
	items = append(items, c.items...)
	return Components{items: append(items, extra)}
}

func (c Components) All() []TimeComponent {
	out := make([]TimeComponent, len(c.items))
	copy(out, c.items)
	return out
}

func (c Components) Empty() bool {
	return len(c.items) == 0
}

// Interval returns the last interval expression.
func (c Components) Interval() (Interval, bool) {
	var out Interval
	found := false
	for _, item := range c.items {
		if v, ok := item.(Interval); ok {
			out, found = v, true
		}
	}
	return out, found
}

// Clock returns the last "at"-prefixed clock time, or the last bare one.
func (c Components) Clock() (ClockTime, bool) {
	var bare, withAt ClockTime
	var hasBare, hasAt bool
	for _, item := range c.items {
		v, ok := item.(ClockTime)
		if !ok {
			continue
		}
		if v.At {
			withAt, hasAt = v, true
		} else {
			bare, hasBare = v, true
		}
	}
	if hasAt {
		return withAt, true
	}
	return bare, hasBare
}

// Date returns the last calendar date.
func (c Components) Date() (CalendarDate, bool) {
	var out CalendarDate
	found := false
	for _, item := range c.items {
		if v, ok := item.(CalendarDate); ok {
			out, found = v, true
		}
	}
	return out, found
}

// DayOffset returns the day shift requested by tomorrow, next week or next month, in that priority.
func (c Components) DayOffset() int {
	for _, rd := range relativeDays[1:] {
		for _, item := range c.items {
			if v, ok := item.(RelativeDay); ok && v.Name == rd.name {
				return rd.days
			}
		}
	}
	return 0
}

// Keywords are the filler words that may lead the text. Order matters when stripping.
var keywordPatterns = []struct {
	word    string
	pattern *regexp.Regexp
}{
	{"later", regexp.MustCompile(`\blater\b`)},
	{"at", regexp.MustCompile(`\bat\b`)},
	{"on", regexp.MustCompile(`\bon\b`)},
	{"by", regexp.MustCompile(`\bby\b`)},
	{"before", regexp.MustCompile(`\bbefore\b`)},
}

// DetectKeywords reports which filler keywords appear anywhere in lower.
func DetectKeywords(lower string) []string {
	var found []string
	for _, kw := range keywordPatterns {
		if kw.pattern.MatchString(lower) {
			found = append(found, kw.word)
		}
	}
	return found
}
