package models

import (
	"strings"
	"time"
)

// Priority ranks how urgent a task is
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from least to most urgent
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Label returns the capitalised priority name
func (p Priority) Label() string {
	if p == "" {
		return ""
	}
	s := string(p)
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParsePriority parses a priority name case-insensitively. An empty name
// yields the default, medium.
func ParsePriority(s string) (Priority, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, true
	}
	p := Priority(s)
	return p, p.Valid()
}

// DefaultProjectColor is used when a project is created without a colour
const DefaultProjectColor = "#3B82F6"

// Project groups tasks under a name and colour
type Project struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ProjectInput is a Project before it has been assigned an ID
type ProjectInput struct {
	Name  string
	Color string
}

// Subtask is a unit of work owned by exactly one task
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Task represents a single task
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Reminder    *time.Time `json:"reminder,omitempty"`
	Tags        []string   `json:"tags"`
	CreatedAt   time.Time  `json:"createdAt"`
	ProjectID   string     `json:"projectId,omitempty"`
	Subtasks    []Subtask  `json:"subtasks"`
}

// TaskInput is a Task minus the fields the store assigns (ID, CreatedAt, Subtasks)
type TaskInput struct {
	Title       string
	Description string
	Completed   bool
	Priority    Priority
	DueDate     *time.Time
	Reminder    *time.Time
	Tags        []string
	ProjectID   string
}

// IsOverdue reports whether the task has a due date strictly before now
func (t Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now)
}

// SubtaskProgress returns the number of completed subtasks and the total
func (t Task) SubtaskProgress() (done, total int) {
	for _, st := range t.Subtasks {
		if st.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// HasTag reports whether tag is one of the task's tags
func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers cannot mutate shared slices or times
func (t Task) Clone() Task {
	c := t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Reminder != nil {
		r := *t.Reminder
		c.Reminder = &r
	}
	c.Tags = append([]string{}, t.Tags...)
	c.Subtasks = append([]Subtask{}, t.Subtasks...)
	return c
}

// NormalizeTags trims every tag, drops empty ones and removes duplicates
// while keeping the order in which tags were first seen.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
