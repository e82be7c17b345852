package store

import (
	"github.com/google/uuid"

	"github.com/Nix177/audio-geo-notes/internal/models"
)

// StartStream creates a fresh stream note. Streams always come up live and
// active; an ended stream can never be restarted, only replaced.
func (s *Store) StartStream(in models.CreateInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Note{}, ErrNotReady
	}

	now := s.clk.Now()

	d := draftFromInput(in)
	d["isLive"] = true
	d["isStream"] = true
	d["streamActive"] = true
	if in.Listeners == nil {
		d["listeners"] = 1
	}

	n := models.Normalize(d, now)
	n.ID = "stream_" + uuid.NewString()
	n.StreamStartedAt = &now
	n.StreamEndedAt = nil

	s.notes = append(s.notes, n)
	s.persistLocked()
	return n, nil
}

// AttachAudio replaces the stream's audio asset with a freshly uploaded one.
// Returns nil when the id doesn't resolve to a stream, ErrStreamEnded when
// the stream already stopped. The superseded asset is cleaned up best-effort
// after the mutation is committed.
func (s *Store) AttachAudio(id, key, mime string) (*models.Note, error) {
	s.mu.Lock()

	if !s.ready {
		s.mu.Unlock()
		return nil, ErrNotReady
	}

	n := s.findLocked(id)
	if n == nil || !n.IsStream {
		s.mu.Unlock()
		return nil, nil
	}
	if !n.StreamActive {
		s.mu.Unlock()
		return nil, ErrStreamEnded
	}

	previous := n.AudioPath
	n.AudioPath = key
	n.AudioMime = mime
	n.UpdatedAt = s.clk.Now()
	s.persistLocked()

	out := *n
	s.mu.Unlock()

	if previous != "" && previous != key && s.cleaner != nil {
		s.cleaner.Remove(previous)
	}

	return &out, nil
}

// UpdateStreamHeartbeat refreshes a stream's liveness and optionally sets
// the listener count. listeners passes through safe-number coercion; nil
// leaves the count unchanged. Heartbeats on an ended stream are deliberately
// a no-op besides the timestamp refresh.
func (s *Store) UpdateStreamHeartbeat(id string, listeners any) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	n := s.findLocked(id)
	if n == nil || !n.IsStream {
		return nil, nil
	}

	if listeners != nil {
		n.Listeners = models.ClampInt(models.SafeNumber(listeners, float64(n.Listeners)), 0)
	}
	n.UpdatedAt = s.clk.Now()
	s.persistLocked()

	out := *n
	return &out, nil
}

// StopStream moves a stream to its terminal state. Repeating the call just
// re-sets the already-false fields and refreshes timestamps.
func (s *Store) StopStream(id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	n := s.findLocked(id)
	if n == nil || !n.IsStream {
		return nil, nil
	}

	now := s.clk.Now()
	n.StreamActive = false
	n.IsLive = false
	n.StreamEndedAt = &now
	n.UpdatedAt = now
	s.persistLocked()

	out := *n
	return &out, nil
}
