// Package db is the persistence collaborator: schedule and content CRUD
// behind a Store interface so API controllers and the playback orchestrator
// can be tested without Postgres.
package db

import (
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/voxline-media/voxline/internal/model"
)

type Store interface {
	// schedules
	CreateSchedule(rec model.ScheduleRecord) (model.ScheduleRecord, error)
	GetSchedule(scheduleID int) (model.ScheduleRecord, error)
	ListSchedules() ([]model.ScheduleRecord, error)
	UpdateSchedule(rec model.ScheduleRecord) error
	UpdateScheduleState(scheduleID int, state model.ScheduleState) error
	UpdateLastPlayed(scheduleID int, playedAt time.Time) error
	DeleteSchedule(scheduleID int) error

	// schedule content refs
	ReplaceScheduleContent(scheduleID int, refs []model.ContentRef) error
	GetScheduleContent(scheduleID int) ([]model.ContentRef, error)

	// schedule <-> player session
	AssignScheduleToSession(scheduleID, sessionID int) error
	UnassignScheduleFromSession(scheduleID, sessionID int) error
	ListActiveSchedulesForSession(sessionID int) ([]model.ScheduleRecord, error)

	// content library (read side; the library owns content lifecycle)
	CreateContent(name, typ, url string, durationSeconds, createdBy int) (model.Content, error)
	GetContentByID(contentID int) (model.Content, error)
	ListContent() ([]model.Content, error)

	// player sessions
	CreateSession(name string, deviceID *string, createdBy int) (model.PlayerSession, error)
	GetSession(sessionID int) (model.PlayerSession, error)
	ListSessions() ([]model.PlayerSession, error)
}

type pgStore struct {
	db *sqlx.DB
}

var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
