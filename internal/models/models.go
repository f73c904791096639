package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used for due dates
const DateLayout = "2006-01-02"

// TimestampLayout is the local-time ISO-8601 format used for created_at and completed_at
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Status is the lifecycle state of a task
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status in display order
var Statuses = []Status{StatusActive, StatusCompleted, StatusArchived}

// ParseStatus converts a string into a Status, rejecting unknown values
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusActive, StatusCompleted, StatusArchived:
		return st, nil
	}
	return "", fmt.Errorf("invalid status %q (want active, completed or archived): %w", s, ErrValidation)
}

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority, most urgent first
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// ParsePriority converts a string into a Priority, rejecting unknown values
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q (want low, medium or high): %w", s, ErrValidation)
}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pr, err := ParsePriority(raw)
	if err != nil {
		return err
	}
	*p = pr
	return nil
}

// Rank orders priorities for sorting: high < medium < low < absent
func (p *Priority) Rank() int {
	if p == nil {
		return 3
	}
	switch *p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// Task represents a single to-do record. Optional fields are nil when absent
// and are written as null so every record carries the full key set.
type Task struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Desc        *string   `json:"desc"`
	Tags        []string  `json:"tags"`
	DueDate     *string   `json:"due_date"`
	Priority    *Priority `json:"priority"`
	Status      Status    `json:"status"`
	CreatedAt   string    `json:"created_at"`
	CompletedAt *string   `json:"completed_at"`
}

// Validate checks the invariants every stored task must satisfy
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("task %d: name is required: %w", t.ID, ErrValidation)
	}
	if t.Status == "" {
		return fmt.Errorf("task %d: status is required: %w", t.ID, ErrValidation)
	}
	if t.CreatedAt == "" {
		return fmt.Errorf("task %d: created_at is required: %w", t.ID, ErrValidation)
	}
	if t.DueDate != nil {
		if _, err := ParseDate(*t.DueDate); err != nil {
			return fmt.Errorf("task %d: %w", t.ID, err)
		}
	}
	return nil
}

// HasTag reports whether the task carries tag (case-sensitive)
func (t *Task) HasTag(tag string) bool {
	for _, own := range t.Tags {
		if own == tag {
			return true
		}
	}
	return false
}

// Due returns the parsed due date; ok is false when the task has none
func (t *Task) Due() (time.Time, bool) {
	if t.DueDate == nil {
		return time.Time{}, false
	}
	d, err := ParseDate(*t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseDate parses a YYYY-MM-DD calendar date in local time
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, ErrValidation)
	}
	return d, nil
}

// FormatTimestamp renders t in TimestampLayout
func FormatTimestamp(t time.Time) string {
	return t.Local().Format(TimestampLayout)
}

// ParseTimestamp accepts timestamps with or without fractional seconds and
// with or without a zone offset. Zone-less values are read as local time.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
