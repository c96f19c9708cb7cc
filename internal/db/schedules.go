package db

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voxline-media/voxline/internal/model"
)

const scheduleColumns = `
	id, description, recurrence, state, audio_mode, wait_for_track_end,
	frequency_minutes, daily_window_from, daily_window_to,
	valid_from, valid_until, last_played_at, created_by, created_at, updated_at`

func (s *pgStore) CreateSchedule(rec model.ScheduleRecord) (model.ScheduleRecord, error) {
	var out model.ScheduleRecord
	const q = `
	INSERT INTO schedules
	  (description, recurrence, state, audio_mode, wait_for_track_end,
	   frequency_minutes, daily_window_from, daily_window_to,
	   valid_from, valid_until, created_by, created_at, updated_at)
	VALUES
	  ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
	RETURNING` + scheduleColumns + `;`
	if err := s.db.Get(&out, q,
		rec.Description, rec.Recurrence, rec.State, rec.AudioMode, rec.WaitForTrackEnd,
		rec.FrequencyMinutes, rec.DailyWindowFrom, rec.DailyWindowTo,
		rec.ValidFrom, rec.ValidUntil, rec.CreatedBy,
	); err != nil {
		log.Error().Err(err).Msg("CreateSchedule failed")
		return model.ScheduleRecord{}, err
	}
	return out, nil
}

func (s *pgStore) GetSchedule(scheduleID int) (model.ScheduleRecord, error) {
	var rec model.ScheduleRecord
	q := `SELECT` + scheduleColumns + ` FROM schedules WHERE id = $1;`
	if err := s.db.Get(&rec, q, scheduleID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("GetSchedule failed")
		return model.ScheduleRecord{}, err
	}
	refs, err := s.GetScheduleContent(scheduleID)
	if err != nil {
		return model.ScheduleRecord{}, err
	}
	rec.ContentItems = refs
	return rec, nil
}

func (s *pgStore) ListSchedules() ([]model.ScheduleRecord, error) {
	var out []model.ScheduleRecord
	q := `SELECT` + scheduleColumns + `
	  FROM schedules
	 ORDER BY id;`
	if err := s.db.Select(&out, q); err != nil {
		log.Error().Err(err).Msg("ListSchedules failed")
		return nil, err
	}
	return out, nil
}

func (s *pgStore) UpdateSchedule(rec model.ScheduleRecord) error {
	const q = `
	UPDATE schedules SET
	  description = $2, recurrence = $3, audio_mode = $4,
	  wait_for_track_end = $5, frequency_minutes = $6,
	  daily_window_from = $7, daily_window_to = $8,
	  valid_from = $9, valid_until = $10, updated_at = now()
	 WHERE id = $1;`
	if _, err := s.db.Exec(q, rec.ID,
		rec.Description, rec.Recurrence, rec.AudioMode,
		rec.WaitForTrackEnd, rec.FrequencyMinutes,
		rec.DailyWindowFrom, rec.DailyWindowTo,
		rec.ValidFrom, rec.ValidUntil,
	); err != nil {
		log.Error().Err(err).Int("schedule_id", rec.ID).Msg("UpdateSchedule failed")
		return err
	}
	return nil
}

func (s *pgStore) UpdateScheduleState(scheduleID int, state model.ScheduleState) error {
	_, err := s.db.Exec(`UPDATE schedules SET state = $2, updated_at = now() WHERE id = $1;`, scheduleID, state)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Str("state", string(state)).Msg("UpdateScheduleState failed")
	}
	return err
}

func (s *pgStore) UpdateLastPlayed(scheduleID int, playedAt time.Time) error {
	_, err := s.db.Exec(`UPDATE schedules SET last_played_at = $2, updated_at = now() WHERE id = $1;`, scheduleID, playedAt)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("UpdateLastPlayed failed")
	}
	return err
}

// DeleteSchedule removes the schedule together with its content refs and
// session assignments in one transaction.
func (s *pgStore) DeleteSchedule(scheduleID int) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM schedule_content WHERE schedule_id = $1;`,
		`DELETE FROM schedule_sessions WHERE schedule_id = $1;`,
		`DELETE FROM schedules WHERE id = $1;`,
	} {
		if _, err := tx.Exec(q, scheduleID); err != nil {
			log.Error().Err(err).Int("schedule_id", scheduleID).Msg("DeleteSchedule failed")
			return err
		}
	}
	return tx.Commit()
}

// ReplaceScheduleContent swaps the ordered content refs of a schedule
// atomically.
func (s *pgStore) ReplaceScheduleContent(scheduleID int, refs []model.ContentRef) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM schedule_content WHERE schedule_id = $1;`, scheduleID); err != nil {
		return err
	}
	for _, ref := range refs {
		if _, err := tx.Exec(`
		INSERT INTO schedule_content (schedule_id, content_id, position, active)
		VALUES ($1,$2,$3,$4);`, scheduleID, ref.ContentID, ref.Position, ref.Active); err != nil {
			log.Error().Err(err).Int("schedule_id", scheduleID).Int("content_id", ref.ContentID).Msg("ReplaceScheduleContent failed")
			return err
		}
	}
	return tx.Commit()
}

func (s *pgStore) GetScheduleContent(scheduleID int) ([]model.ContentRef, error) {
	var refs []model.ContentRef
	const q = `
	SELECT schedule_id, content_id, position, active
	  FROM schedule_content
	 WHERE schedule_id = $1
	 ORDER BY position;`
	if err := s.db.Select(&refs, q, scheduleID); err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Msg("GetScheduleContent failed")
		return nil, err
	}
	return refs, nil
}

func (s *pgStore) AssignScheduleToSession(scheduleID, sessionID int) error {
	_, err := s.db.Exec(`
	INSERT INTO schedule_sessions (schedule_id, session_id)
	VALUES ($1,$2)
	ON CONFLICT DO NOTHING;`, scheduleID, sessionID)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Int("session_id", sessionID).Msg("AssignScheduleToSession failed")
	}
	return err
}

func (s *pgStore) UnassignScheduleFromSession(scheduleID, sessionID int) error {
	_, err := s.db.Exec(`DELETE FROM schedule_sessions WHERE schedule_id = $1 AND session_id = $2;`, scheduleID, sessionID)
	if err != nil {
		log.Error().Err(err).Int("schedule_id", scheduleID).Int("session_id", sessionID).Msg("UnassignScheduleFromSession failed")
	}
	return err
}

// ListActiveSchedulesForSession returns every non-completed schedule
// assigned to a session, content refs included, for the evaluation loop.
func (s *pgStore) ListActiveSchedulesForSession(sessionID int) ([]model.ScheduleRecord, error) {
	var out []model.ScheduleRecord
	q := `
	SELECT ` + prefixedScheduleColumns("sc") + `
	  FROM schedules sc
	  JOIN schedule_sessions ss ON ss.schedule_id = sc.id
	 WHERE ss.session_id = $1
	   AND sc.state <> 'completed'
	 ORDER BY sc.id;`
	if err := s.db.Select(&out, q, sessionID); err != nil {
		log.Error().Err(err).Int("session_id", sessionID).Msg("ListActiveSchedulesForSession failed")
		return nil, err
	}
	for i := range out {
		refs, err := s.GetScheduleContent(out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].ContentItems = refs
	}
	return out, nil
}

func prefixedScheduleColumns(alias string) string {
	return fmt.Sprintf(`
	%[1]s.id, %[1]s.description, %[1]s.recurrence, %[1]s.state, %[1]s.audio_mode,
	%[1]s.wait_for_track_end, %[1]s.frequency_minutes,
	%[1]s.daily_window_from, %[1]s.daily_window_to,
	%[1]s.valid_from, %[1]s.valid_until, %[1]s.last_played_at,
	%[1]s.created_by, %[1]s.created_at, %[1]s.updated_at`, alias)
}
