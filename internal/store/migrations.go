package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per recording
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			frames INTEGER NOT NULL DEFAULT 0,
			duration_ms INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Gesture frames table - the published gesture states of a session
		`CREATE TABLE IF NOT EXISTS gesture_frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			offset_ms INTEGER NOT NULL,
			gesture TEXT NOT NULL,
			rotation_x REAL NOT NULL,
			rotation_y REAL NOT NULL,
			pinch REAL NOT NULL,
			present INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_gesture_frames_session_seq ON gesture_frames(session_id, seq)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
