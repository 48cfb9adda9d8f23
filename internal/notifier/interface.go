// Package notifier delivers snapshot run summaries to external systems.
package notifier

import (
	"context"
	"time"
)

// Event summarizes one finished snapshot run.
type Event struct {
	Type       string    `json:"type"`
	Users      int       `json:"users"`
	Written    int       `json:"written"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Succeeded reports whether the run wrote every snapshot.
func (e Event) Succeeded() bool {
	return e.Error == "" && e.Failed == 0
}

// Notifier defines the interface for run notifications
type Notifier interface {
	// Name returns the unique identifier for this notifier
	Name() string

	// Notify delivers one event
	Notify(ctx context.Context, event Event) error
}
