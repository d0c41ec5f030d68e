package kafka

import "time"

type EventType string

const (
	EventTypeSearch   EventType = "search"
	EventTypeView     EventType = "view"
	EventTypeFavorite EventType = "favorite"
)

// Event - пользовательское событие для аналитики
type Event struct {
	UserID     string    `json:"user_id"`
	Type       EventType `json:"type"`
	Categories []int64   `json:"categories,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
