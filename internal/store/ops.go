package store

import (
	"github.com/google/uuid"

	"github.com/Nix177/audio-geo-notes/internal/models"
)

// CreateNote validates the input, applies defaults, assigns identity and
// timestamps, appends to the collection and queues a persist. The created
// note is returned as a copy.
func (s *Store) CreateNote(in models.CreateInput) (models.Note, error) {
	if err := in.Validate(); err != nil {
		return models.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return models.Note{}, ErrNotReady
	}

	n := models.Normalize(draftFromInput(in), s.clk.Now())
	n.ID = "note_" + uuid.NewString()

	s.notes = append(s.notes, n)
	s.persistLocked()
	return n, nil
}

// ApplyVote increments likes or downvotes by exactly one. There is no
// double-vote prevention server-side; every call counts as a new vote.
// A nil note means the id didn't resolve.
func (s *Store) ApplyVote(id, voteType string) (*models.Note, error) {
	if voteType != models.VoteLike && voteType != models.VoteDislike {
		return nil, ErrInvalidVote
	}
	return s.bump(id, func(n *models.Note) {
		if voteType == models.VoteLike {
			n.Likes++
		} else {
			n.Downvotes++
		}
	})
}

// ReportNote increments the report counter unconditionally.
func (s *Store) ReportNote(id string) (*models.Note, error) {
	return s.bump(id, func(n *models.Note) {
		n.Reports++
	})
}

// IncrementPlay increments the play counter unconditionally.
func (s *Store) IncrementPlay(id string) (*models.Note, error) {
	return s.bump(id, func(n *models.Note) {
		n.Plays++
	})
}

// bump applies a counter mutation to one note, refreshes updatedAt and
// queues a persist.
func (s *Store) bump(id string, mutate func(*models.Note)) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	n := s.findLocked(id)
	if n == nil {
		return nil, nil
	}

	mutate(n)
	n.UpdatedAt = s.clk.Now()
	s.persistLocked()

	out := *n
	return &out, nil
}

func draftFromInput(in models.CreateInput) models.Draft {
	d := models.Draft{
		"title":       in.Title,
		"description": in.Description,
		"author":      in.Author,
		"category":    in.Category,
		"icon":        in.Icon,
		"type":        in.Type,
		"isLive":      in.IsLive,
	}
	if in.Duration != nil {
		d["duration"] = *in.Duration
	}
	if in.Lat != nil {
		d["lat"] = *in.Lat
	}
	if in.Lng != nil {
		d["lng"] = *in.Lng
	}
	if in.Listeners != nil {
		d["listeners"] = *in.Listeners
	}
	if in.AudioPath != "" {
		d["audioPath"] = in.AudioPath
		d["audioMime"] = in.AudioMime
	}
	return d
}
