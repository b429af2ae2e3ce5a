package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session records one run of the tracking loop.
type Session struct {
	ID              string     `json:"id"`
	ProfileID       string     `json:"profile_id,omitempty"`
	SkinModelLoaded bool       `json:"skin_model_loaded"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Ticks           int64      `json:"ticks"`
}

// SessionRepository provides operations on session records.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start inserts a new open session.
func (r *SessionRepository) Start(sess *Session) error {
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	var profileID sql.NullString
	if sess.ProfileID != "" {
		profileID = sql.NullString{String: sess.ProfileID, Valid: true}
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, profile_id, skin_model_loaded, started_at, ticks)
		 VALUES (?, ?, ?, ?, 0)`,
		sess.ID, profileID, sess.SkinModelLoaded, sess.StartedAt,
	)
	return err
}

// UpdateTicks records the number of ticks processed so far.
func (r *SessionRepository) UpdateTicks(id string, ticks int64) error {
	result, err := r.db.Exec(`UPDATE sessions SET ticks = ? WHERE id = ?`, ticks, id)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// Finish closes a session with its final tick count.
func (r *SessionRepository) Finish(id string, ticks int64, endedAt time.Time) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ticks = ?, ended_at = ? WHERE id = ?`,
		ticks, endedAt, id,
	)
	if err != nil {
		return err
	}
	return expectOneRow(result)
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	return scanSession(r.db.QueryRow(
		`SELECT id, profile_id, skin_model_loaded, started_at, ended_at, ticks
		 FROM sessions WHERE id = ?`, id,
	))
}

// List retrieves the most recent sessions, newest first.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, profile_id, skin_model_loaded, started_at, ended_at, ticks
		 FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func scanSession(row scanner) (*Session, error) {
	s := &Session{}
	var profileID sql.NullString
	var endedAt sql.NullTime

	err := row.Scan(&s.ID, &profileID, &s.SkinModelLoaded, &s.StartedAt, &endedAt, &s.Ticks)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	s.ProfileID = profileID.String
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return s, nil
}
