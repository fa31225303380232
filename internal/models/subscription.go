package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription represents one subscriber's watch list.
//
// Halls is the optional hall filter: nil means "watch every configured hall".
// An empty slice is never stored; the db layer canonicalizes it to nil on write.
type Subscription struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	Keywords     []string   `json:"keywords"`
	Halls        []string   `json:"halls,omitempty"`
	LastNotified *time.Time `json:"last_notified,omitempty"` // calendar date of the last digest email
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// AllHalls reports whether the subscription watches every hall.
func (s *Subscription) AllHalls() bool {
	return len(s.Halls) == 0
}

// NotifiedOn reports whether a digest was already sent on the given calendar day.
func (s *Subscription) NotifiedOn(day time.Time) bool {
	if s.LastNotified == nil {
		return false
	}
	y1, m1, d1 := s.LastNotified.Date()
	y2, m2, d2 := day.Date()
	if y1 != y2 {
		return y1 > y2
	}
	if m1 != m2 {
		return m1 > m2
	}
	return d1 >= d2
}
