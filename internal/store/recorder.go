package store

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/gesturemagic/internal/gesture"
)

// Recorder tuning.
const (
	RecorderBuffer    = 256
	RecorderBatchSize = 64
	RecorderFlush     = 250 * time.Millisecond
)

// ErrRecorderClosed is returned by Close on an already closed recorder.
var ErrRecorderClosed = errors.New("recorder closed")

// Recorder appends gesture states to a session in the background. Record
// never blocks: when the buffer is full the state is dropped and counted.
type Recorder struct {
	store   *Store
	session *Session
	start   time.Time

	mu     sync.RWMutex
	closed bool
	ch     chan Frame
	done   chan struct{}

	dropped atomic.Int64
	written int
	err     error
}

// NewRecorder creates a session named name and starts recording into it.
func (s *Store) NewRecorder(name string) (*Recorder, error) {
	now := time.Now()
	if name == "" {
		name = now.Format("2006-01-02 15:04:05")
	}

	sess := &Session{ID: uuid.New().String(), Name: name, CreatedAt: now}
	if err := s.Sessions().Create(sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	r := &Recorder{
		store:   s,
		session: sess,
		start:   now,
		ch:      make(chan Frame, RecorderBuffer),
		done:    make(chan struct{}),
	}
	go r.run()

	return r, nil
}

// ID returns the session ID being recorded.
func (r *Recorder) ID() string {
	return r.session.ID
}

// Record queues st with its offset from the start of the session. It
// returns false if the state was dropped.
func (r *Recorder) Record(st gesture.State) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		return false
	}

	f := Frame{OffsetMs: time.Since(r.start).Milliseconds(), State: st}
	select {
	case r.ch <- f:
		return true
	default:
		r.dropped.Add(1)
		return false
	}
}

// Dropped returns how many states were discarded because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close flushes queued frames and marks the session finished.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ErrRecorderClosed
	}
	r.closed = true
	close(r.ch)
	r.mu.Unlock()

	<-r.done

	duration := time.Since(r.start).Milliseconds()
	if err := r.store.Sessions().Finish(r.session.ID, r.written, duration, time.Now()); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n := r.Dropped(); n > 0 {
		log.Printf("Session %s dropped %d frames", r.session.ID, n)
	}
	return r.err
}

func (r *Recorder) run() {
	defer close(r.done)

	ticker := time.NewTicker(RecorderFlush)
	defer ticker.Stop()

	batch := make([]Frame, 0, RecorderBatchSize)
	seq := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := r.store.Frames().Append(r.session.ID, batch); err != nil {
			log.Printf("Error writing session frames: %v", err)
			r.err = err
		} else {
			r.written += len(batch)
		}
		batch = batch[:0]
	}

	for {
		select {
		case f, ok := <-r.ch:
			if !ok {
				flush()
				return
			}
			f.Seq = seq
			seq++
			batch = append(batch, f)
			if len(batch) >= RecorderBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
