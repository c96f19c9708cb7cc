package db

import (
	"github.com/rs/zerolog/log"

	"github.com/voxline-media/voxline/internal/model"
)

func (s *pgStore) CreateContent(name, typ, url string, durationSeconds, createdBy int) (model.Content, error) {
	var c model.Content
	const q = `
	INSERT INTO content
	  (name, type, url, duration_seconds, created_by, created_at)
	VALUES
	  ($1,$2,$3,$4,$5,now())
	RETURNING id, name, type, url, duration_seconds, created_by, created_at;`
	if err := s.db.Get(&c, q, name, typ, url, durationSeconds, createdBy); err != nil {
		log.Error().Err(err).Msg("CreateContent failed")
		return model.Content{}, err
	}
	return c, nil
}

func (s *pgStore) GetContentByID(contentID int) (model.Content, error) {
	var c model.Content
	const q = `
	SELECT id, name, type, url, duration_seconds, created_by, created_at
	  FROM content
	 WHERE id = $1;`
	err := s.db.Get(&c, q, contentID)
	if err != nil {
		log.Error().Err(err).Int("content_id", contentID).Msg("GetContentByID failed")
	}
	return c, err
}

func (s *pgStore) ListContent() ([]model.Content, error) {
	var all []model.Content
	const q = `
	SELECT id, name, type, url, duration_seconds, created_by, created_at
	  FROM content
	 ORDER BY id;`
	if err := s.db.Select(&all, q); err != nil {
		log.Error().Err(err).Msg("ListContent failed")
		return nil, err
	}
	return all, nil
}
