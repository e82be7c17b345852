// Package store owns the canonical in-memory collection of notes and mirrors
// it to a single JSON file on disk. All mutations happen synchronously under
// one lock; disk writes are handed to a single writer goroutine so that no
// two writes interleave and file contents always reflect call order.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Nix177/audio-geo-notes/internal/clock"
	"github.com/Nix177/audio-geo-notes/internal/models"
)

// AssetCleaner removes a superseded audio asset. Implementations must refuse
// to touch anything outside the managed upload area; failures are swallowed.
type AssetCleaner interface {
	Remove(key string)
}

// Store is the persistence layer plus the note/stream operations on top of it.
type Store struct {
	path    string
	seed    []models.Draft
	clk     clock.Clock
	cleaner AssetCleaner

	mu    sync.Mutex
	notes []models.Note
	ready bool
	shut  bool

	writes  chan []byte
	pending sync.WaitGroup
	closed  sync.Once
}

// Listing modes accepted by ListNotes.
const (
	ModeArchive = "archive"
	ModeLive    = "live"
)

type fileEnvelope struct {
	Notes []models.Note `json:"notes"`
}

type looseEnvelope struct {
	Notes []models.Draft `json:"notes"`
}

// New creates a Store persisting to path. The seed dataset is only used when
// the file does not exist yet. cleaner may be nil when no upload area is
// configured.
func New(path string, seed []models.Draft, clk clock.Clock, cleaner AssetCleaner) *Store {
	s := &Store{
		path:    path,
		seed:    seed,
		clk:     clk,
		cleaner: cleaner,
		writes:  make(chan []byte, 64),
	}
	go s.writer()
	return s
}

// Init loads the data file, seeding it when absent. Absence is the only
// error treated as "empty"; an unreadable or unparsable file aborts startup.
func (s *Store) Init() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s.seedAndPersist()
	}
	if err != nil {
		return fmt.Errorf("read data file %s: %w", s.path, err)
	}

	var envelope looseEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("parse data file %s: %w", s.path, err)
	}

	now := s.clk.Now()
	notes := make([]models.Note, 0, len(envelope.Notes))
	for i, draft := range envelope.Notes {
		n := models.Normalize(draft, now)
		if n.ID == "" {
			n.ID = seedID(i)
		}
		notes = append(notes, n)
	}

	s.mu.Lock()
	s.notes = notes
	s.ready = true
	s.mu.Unlock()

	slog.Info("store: loaded", "path", s.path, "notes", len(notes))
	return nil
}

func (s *Store) seedAndPersist() error {
	now := s.clk.Now()
	notes := make([]models.Note, 0, len(s.seed))
	for i, draft := range s.seed {
		n := models.Normalize(draft, now)
		if n.ID == "" {
			n.ID = seedID(i)
		}
		notes = append(notes, n)
	}

	payload, err := json.MarshalIndent(fileEnvelope{Notes: notes}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode seed dataset: %w", err)
	}
	// The first write is synchronous so startup fails loudly on a bad path.
	if err := writeFileAtomic(s.path, payload, 0o644); err != nil {
		return fmt.Errorf("write seed dataset: %w", err)
	}
	persistWrites.Inc()

	s.mu.Lock()
	s.notes = notes
	s.ready = true
	s.mu.Unlock()

	slog.Info("store: seeded", "path", s.path, "notes", len(notes))
	return nil
}

func seedID(index int) string {
	return fmt.Sprintf("seed_%d_%s", index, uuid.NewString()[:8])
}

// persistLocked snapshots the collection and queues it for the writer
// goroutine. Callers must hold s.mu; marshaling under the lock is what makes
// each queued payload a consistent snapshot. After Close the snapshot is
// dropped instead of sent, so late mutations cannot hit a closed channel.
func (s *Store) persistLocked() {
	if s.shut {
		slog.Warn("store: persist skipped, store closed", "path", s.path)
		return
	}
	payload, err := json.MarshalIndent(fileEnvelope{Notes: s.notes}, "", "  ")
	if err != nil {
		slog.Error("store: encode failed", "error", err)
		return
	}
	s.pending.Add(1)
	s.writes <- payload
}

func (s *Store) writer() {
	for payload := range s.writes {
		if err := writeFileAtomic(s.path, payload, 0o644); err != nil {
			// Post-init persist failures are logged, never surfaced:
			// the in-memory collection stays canonical.
			slog.Error("store: persist failed", "path", s.path, "error", err)
		} else {
			persistWrites.Inc()
		}
		s.pending.Done()
	}
}

// Flush blocks until every queued write has hit disk.
func (s *Store) Flush() {
	s.pending.Wait()
}

// Close drains the write queue and stops the writer goroutine. Safe to call
// at any time and more than once; mutations landing after Close keep working
// in memory but are no longer persisted.
func (s *Store) Close() {
	s.closed.Do(func() {
		s.mu.Lock()
		s.shut = true
		s.mu.Unlock()
		s.pending.Wait()
		close(s.writes)
	})
}

// ListNotes returns an independent snapshot filtered by mode: ModeArchive
// keeps isLive=false, ModeLive keeps isLive=true, anything else returns all.
// Sorted by updatedAt descending; equal timestamps keep insertion order.
func (s *Store) ListNotes(mode string) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	out := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		switch mode {
		case ModeArchive:
			if n.IsLive {
				continue
			}
		case ModeLive:
			if !n.IsLive {
				continue
			}
		}
		out = append(out, n)
	}

	sortByUpdatedAt(out)
	return out, nil
}

// ListStreams returns only notes created through the streaming flow,
// optionally narrowed to the ones still accepting audio.
func (s *Store) ListStreams(activeOnly bool) ([]models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if !n.IsStream {
			continue
		}
		if activeOnly && !n.StreamActive {
			continue
		}
		out = append(out, n)
	}

	sortByUpdatedAt(out)
	return out, nil
}

// GetNoteByID returns a copy of the note, or nil when the id doesn't resolve.
func (s *Store) GetNoteByID(id string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	n := s.findLocked(id)
	if n == nil {
		return nil, nil
	}
	out := *n
	return &out, nil
}

// AudioKeys returns the set of clip keys still referenced by any note.
// The orphan sweep uses it to decide what may be removed.
func (s *Store) AudioKeys() (map[string]bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return nil, ErrNotReady
	}

	keys := make(map[string]bool)
	for _, n := range s.notes {
		if n.AudioPath != "" {
			keys[n.AudioPath] = true
		}
	}
	return keys, nil
}

// findLocked returns a mutable alias into the collection. Callers must hold
// s.mu and must not retain the pointer past the unlock.
func (s *Store) findLocked(id string) *models.Note {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return &s.notes[i]
		}
	}
	return nil
}

func sortByUpdatedAt(notes []models.Note) {
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
}
