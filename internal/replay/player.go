// Package replay plays a recorded gesture session back through the same
// publish path the live camera uses.
package replay

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/gesturemagic/internal/gesture"
	"github.com/ayusman/gesturemagic/internal/store"
)

// ErrEmptySession is returned when a session has no frames to play.
var ErrEmptySession = errors.New("session has no frames")

// Player publishes stored frames at their recorded offsets.
type Player struct {
	sessionID string
	frames    []store.Frame

	// Speed scales playback; 2 plays twice as fast. Values <= 0 mean 1.
	Speed float64
	// Loop restarts from the first frame after the last.
	Loop bool
}

// New creates a player over frames, which must be in recording order.
func New(frames []store.Frame) *Player {
	return &Player{frames: frames, Speed: 1}
}

// Load reads a session's frames from st.
func Load(st *store.Store, sessionID string) (*Player, error) {
	if _, err := st.Sessions().GetByID(sessionID); err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	frames, err := st.Frames().ListBySession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load frames for %s: %w", sessionID, err)
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("load session %s: %w", sessionID, ErrEmptySession)
	}

	p := New(frames)
	p.sessionID = sessionID
	return p, nil
}

// Len returns the number of frames.
func (p *Player) Len() int {
	return len(p.frames)
}

// Run publishes every frame at its offset and returns when the session
// ends or ctx is cancelled. The last published state stays in place.
func (p *Player) Run(ctx context.Context, publish func(gesture.State)) error {
	if len(p.frames) == 0 {
		return ErrEmptySession
	}

	speed := p.Speed
	if speed <= 0 {
		speed = 1
	}

	log.Printf("Replaying session %s (%d frames)", p.sessionID, len(p.frames))

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		start := time.Now()
		for _, f := range p.frames {
			due := start.Add(time.Duration(float64(f.OffsetMs)/speed) * time.Millisecond)
			timer.Reset(time.Until(due))

			select {
			case <-ctx.Done():
				return nil
			case <-timer.C:
			}

			publish(f.State)
		}

		if !p.Loop {
			log.Printf("Replay of session %s finished", p.sessionID)
			return nil
		}
	}
}
