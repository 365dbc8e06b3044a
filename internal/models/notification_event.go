package models

import (
	"encoding/json"
	"time"
)

// NotificationEvent is the payload published when a reminder fires
type NotificationEvent struct {
	Title    string     `json:"title"`
	Body     string     `json:"body"`
	TaskID   string     `json:"task_id,omitempty"`
	Reminder *time.Time `json:"reminder,omitempty"`
	SentAt   time.Time  `json:"sent_at"`
}

func (n *NotificationEvent) FromJSON(data []byte) error {
	return json.Unmarshal(data, n)
}

func (n *NotificationEvent) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
