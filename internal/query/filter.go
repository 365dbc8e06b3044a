// Package query derives filtered views of the task collection.
package query

import (
	"strings"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

// Filter holds the criteria applied to the task list. A zero-valued field
// matches every task; a task is kept only when all set fields match.
type Filter struct {
	Search    string
	Priority  models.Priority
	Tag       string
	ProjectID string
}

// Active reports whether any criterion is set
func (f Filter) Active() bool {
	return f.Search != "" || f.Priority != "" || f.Tag != "" || f.ProjectID != ""
}

// Matches reports whether t satisfies every set criterion
func (f Filter) Matches(t models.Task) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	return true
}

// Apply returns the tasks matching f in their original order
func Apply(tasks []models.Task, f Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// AvailableTags returns every tag used by any task, once each, in the order
// they are first seen.
func AvailableTags(tasks []models.Task) []string {
	var all []string
	for _, t := range tasks {
		all = append(all, t.Tags...)
	}
	return models.NormalizeTags(all)
}
