package v1

import "time"

// Reminder is a pending reminder as stored.
type Reminder struct {
	Message     string    `json:"message"`
	TriggerTime time.Time `json:"trigger_time"`
	CreatedAt   time.Time `json:"timestamp"`
	FullCommand string    `json:"full_command"`
}

// Parsed is how reminder text was understood.
type Parsed struct {
	Message        string    `json:"message"`
	TriggerTime    time.Time `json:"trigger_time"`
	TimeExpression string    `json:"time_expression"`
}
