package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - named tuning presets for the pipeline
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			min_depth INTEGER NOT NULL CHECK(min_depth >= 0),
			max_depth INTEGER NOT NULL CHECK(max_depth > min_depth),
			near_threshold INTEGER NOT NULL DEFAULT 1 CHECK(near_threshold BETWEEN 1 AND 255),
			skin_threshold REAL NOT NULL DEFAULT 0.4,
			min_skin_area INTEGER NOT NULL DEFAULT 1000,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Sessions table - one row per run of the tracking loop
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			profile_id TEXT REFERENCES profiles(id) ON DELETE SET NULL,
			skin_model_loaded INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME,
			ticks INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_profile_id ON sessions(profile_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
