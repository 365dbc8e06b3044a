package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/MohammedKaif037/ToDoImprovised/internal/models"
)

// DateTimeLayout is how due dates and reminders are typed and shown
const DateTimeLayout = "2006-01-02 15:04"

const dateLayout = "2006-01-02"

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// ParseDateTime reads a local date and time typed in the editor. An empty
// string clears the value; a bare date means midnight.
func ParseDateTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range []string{DateTimeLayout, dateLayout} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD HH:MM", s)
}

// FormatDateTime renders t in local time, or "" when unset
func FormatDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Local().Format(DateTimeLayout)
}

// ParseTags splits comma separated input into normalised tags
func ParseTags(s string) []string {
	return models.NormalizeTags(strings.Split(s, ","))
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, c := range s[1:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func nextPriority(p models.Priority, dir int) models.Priority {
	ps := models.Priorities
	for i, q := range ps {
		if q == p {
			return ps[(i+dir+len(ps))%len(ps)]
		}
	}
	return models.PriorityMedium
}
