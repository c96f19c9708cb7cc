package db

import (
	"github.com/rs/zerolog/log"

	"github.com/voxline-media/voxline/internal/model"
)

func (s *pgStore) CreateSession(name string, deviceID *string, createdBy int) (model.PlayerSession, error) {
	var ps model.PlayerSession
	const q = `
	INSERT INTO player_sessions (name, device_id, created_by, created_at)
	VALUES ($1,$2,$3,now())
	RETURNING id, name, device_id, created_by, created_at, last_seen_at;`
	if err := s.db.Get(&ps, q, name, deviceID, createdBy); err != nil {
		log.Error().Err(err).Msg("CreateSession failed")
		return model.PlayerSession{}, err
	}
	return ps, nil
}

func (s *pgStore) GetSession(sessionID int) (model.PlayerSession, error) {
	var ps model.PlayerSession
	const q = `
	SELECT id, name, device_id, created_by, created_at, last_seen_at
	  FROM player_sessions
	 WHERE id = $1;`
	err := s.db.Get(&ps, q, sessionID)
	if err != nil {
		log.Error().Err(err).Int("session_id", sessionID).Msg("GetSession failed")
	}
	return ps, err
}

func (s *pgStore) ListSessions() ([]model.PlayerSession, error) {
	var out []model.PlayerSession
	const q = `
	SELECT id, name, device_id, created_by, created_at, last_seen_at
	  FROM player_sessions
	 ORDER BY id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListSessions failed")
		return nil, err
	}
	return out, nil
}
