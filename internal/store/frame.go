package store

import (
	"database/sql"

	"github.com/ayusman/gesturemagic/internal/gesture"
)

// Frame is one published gesture state within a session.
type Frame struct {
	Seq      int           `json:"seq"`
	OffsetMs int64         `json:"offsetMs"`
	State    gesture.State `json:"state"`
}

// FrameRepository stores the gesture frames of sessions.
type FrameRepository struct {
	db *sql.DB
}

// Frames returns the frame repository for this store.
func (s *Store) Frames() *FrameRepository {
	return &FrameRepository{db: s.db}
}

// Append inserts frames for a session in a single transaction.
func (r *FrameRepository) Append(sessionID string, frames []Frame) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO gesture_frames (session_id, seq, offset_ms, gesture, rotation_x, rotation_y, pinch, present)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		st := f.State
		if _, err := stmt.Exec(sessionID, f.Seq, f.OffsetMs, string(st.Gesture),
			st.Rotation.X, st.Rotation.Y, st.PinchDistance, st.Present); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession retrieves a session's frames in recording order.
func (r *FrameRepository) ListBySession(sessionID string) ([]Frame, error) {
	rows, err := r.db.Query(
		`SELECT seq, offset_ms, gesture, rotation_x, rotation_y, pinch, present
		 FROM gesture_frames
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var f Frame
		var g string
		if err := rows.Scan(&f.Seq, &f.OffsetMs, &g,
			&f.State.Rotation.X, &f.State.Rotation.Y, &f.State.PinchDistance, &f.State.Present); err != nil {
			return nil, err
		}
		f.State.Gesture = gesture.Gesture(g)
		frames = append(frames, f)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return frames, nil
}

// CountBySession returns how many frames a session holds.
func (r *FrameRepository) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM gesture_frames WHERE session_id = ?`, sessionID).Scan(&n)
	return n, err
}
