package model

import "time"

// Content is an item in the audio library (jingle, ad, announcement).
type Content struct {
	ID              int       `db:"id"               json:"id"`
	Name            string    `db:"name"             json:"name"`
	Type            string    `db:"type"             json:"type"`
	URL             string    `db:"url"              json:"url"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	CreatedBy       int       `db:"created_by"       json:"created_by"`
	CreatedAt       time.Time `db:"created_at"       json:"created_at"`
}
