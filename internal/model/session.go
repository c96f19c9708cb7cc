package model

import "time"

// PlayerSession is a client-premises playback endpoint (one music output).
// Schedules are assigned to sessions many-to-many.
type PlayerSession struct {
	ID         int        `db:"id"          json:"id"`
	Name       string     `db:"name"        json:"name"`
	DeviceID   *string    `db:"device_id"   json:"device_id,omitempty"`
	CreatedBy  int        `db:"created_by"  json:"created_by"`
	CreatedAt  time.Time  `db:"created_at"  json:"created_at"`
	LastSeenAt *time.Time `db:"last_seen_at" json:"last_seen_at,omitempty"`
}
