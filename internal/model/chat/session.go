package chat

import "time"

// SessionIDLayout formats session keys from the wall clock, second granularity.
const SessionIDLayout = "2006-01-02 15:04:05"

// Summary describes a stored conversation for the session selector.
type Summary struct {
	ID        string    `json:"id"`
	Turns     int       `json:"turns"`
	CreatedAt time.Time `json:"createdAt"`
}
