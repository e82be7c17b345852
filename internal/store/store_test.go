package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nix177/audio-geo-notes/internal/models"
)

// stepClock hands out strictly increasing timestamps so updatedAt ordering
// is deterministic in tests.
type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func testSeed() []models.Draft {
	return []models.Draft{
		{"title": "Archive one", "author": "A", "likes": 3},
		{"title": "Live one", "author": "B", "isLive": true},
	}
}

func newTestStore(t *testing.T, seed []models.Draft) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notes.json")
	s := New(path, seed, newStepClock(), nil)
	require.NoError(t, s.Init())
	t.Cleanup(s.Close)
	return s
}

func TestInitSeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "notes.json")
	s := New(path, testSeed(), newStepClock(), nil)
	require.NoError(t, s.Init())
	defer s.Close()

	// Seeding writes the file synchronously
	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var envelope struct {
		Notes []models.Note `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Len(t, envelope.Notes, 2)
	assert.Contains(t, envelope.Notes[0].ID, "seed_0_")
	assert.Equal(t, "Archive one", envelope.Notes[0].Title)
}

func TestInitRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s := New(path, nil, newStepClock(), nil)
	err := s.Init()
	require.Error(t, err, "a parse failure must not be treated as an empty store")
	assert.Contains(t, err.Error(), "parse data file")
}

func TestReadsRequireInit(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "notes.json"), nil, newStepClock(), nil)

	_, err := s.ListNotes("")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = s.GetNoteByID("x")
	assert.ErrorIs(t, err, ErrNotReady)
	_, err = s.ListStreams(false)
	assert.ErrorIs(t, err, ErrNotReady)
}

func TestCreateNoteAppliesDefaultsAndIdentity(t *testing.T) {
	s := newTestStore(t, nil)

	note, err := s.CreateNote(models.CreateInput{Title: "  Test  ", Author: "QA"})
	require.NoError(t, err)

	assert.Contains(t, note.ID, "note_")
	assert.Equal(t, "Test", note.Title)
	assert.Equal(t, "QA", note.Author)
	assert.Equal(t, models.DefaultDuration, note.Duration)
	assert.Equal(t, models.DefaultBaseHealth, note.BaseHealth)
	assert.Zero(t, note.Likes)
	assert.Zero(t, note.Downvotes)
	assert.Zero(t, note.Reports)
	assert.Zero(t, note.Plays)
	assert.False(t, note.IsStream)
	assert.False(t, note.StreamActive)
}

func TestCreateNoteRejectsBlankTitle(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.CreateNote(models.CreateInput{Title: "   "})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestApplyVote(t *testing.T) {
	s := newTestStore(t, nil)
	note, err := s.CreateNote(models.CreateInput{Title: "Vote target"})
	require.NoError(t, err)

	liked, err := s.ApplyVote(note.ID, models.VoteLike)
	require.NoError(t, err)
	require.NotNil(t, liked)
	assert.Equal(t, 1, liked.Likes)
	assert.Equal(t, 0, liked.Downvotes)

	disliked, err := s.ApplyVote(note.ID, models.VoteDislike)
	require.NoError(t, err)
	assert.Equal(t, 1, disliked.Likes)
	assert.Equal(t, 1, disliked.Downvotes)

	// No dedup: a second like counts again
	again, err := s.ApplyVote(note.ID, models.VoteLike)
	require.NoError(t, err)
	assert.Equal(t, 2, again.Likes)
}

func TestApplyVoteInvalidType(t *testing.T) {
	s := newTestStore(t, nil)
	note, _ := s.CreateNote(models.CreateInput{Title: "Vote target"})

	_, err := s.ApplyVote(note.ID, "up")
	assert.ErrorIs(t, err, ErrInvalidVote)

	// Invalid type beats unknown id
	_, err = s.ApplyVote("nope", "sideways")
	assert.ErrorIs(t, err, ErrInvalidVote)
}

func TestUnknownIDReturnsNil(t *testing.T) {
	s := newTestStore(t, nil)

	note, err := s.ApplyVote("ghost", models.VoteLike)
	require.NoError(t, err)
	assert.Nil(t, note)

	note, err = s.ReportNote("ghost")
	require.NoError(t, err)
	assert.Nil(t, note)

	note, err = s.IncrementPlay("ghost")
	require.NoError(t, err)
	assert.Nil(t, note)

	note, err = s.GetNoteByID("ghost")
	require.NoError(t, err)
	assert.Nil(t, note)
}

func TestReportAndPlayIncrement(t *testing.T) {
	s := newTestStore(t, nil)
	note, _ := s.CreateNote(models.CreateInput{Title: "Target"})

	reported, err := s.ReportNote(note.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, reported.Reports)

	played, err := s.IncrementPlay(note.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, played.Plays)
	assert.Equal(t, 1, played.Reports, "report must survive the play")
}

func TestListNotesPartition(t *testing.T) {
	s := newTestStore(t, testSeed())
	_, err := s.CreateNote(models.CreateInput{Title: "Another live", IsLive: true})
	require.NoError(t, err)

	all, err := s.ListNotes("")
	require.NoError(t, err)
	archive, err := s.ListNotes(ModeArchive)
	require.NoError(t, err)
	live, err := s.ListNotes(ModeLive)
	require.NoError(t, err)

	for _, n := range archive {
		assert.False(t, n.IsLive)
	}
	for _, n := range live {
		assert.True(t, n.IsLive)
	}
	assert.Equal(t, len(all), len(archive)+len(live), "filters must partition the collection")
}

func TestListNotesSortedByUpdatedAt(t *testing.T) {
	s := newTestStore(t, nil)
	a, _ := s.CreateNote(models.CreateInput{Title: "first"})
	b, _ := s.CreateNote(models.CreateInput{Title: "second"})

	// Touching the older note moves it to the front
	_, err := s.IncrementPlay(a.ID)
	require.NoError(t, err)

	notes, err := s.ListNotes("")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, a.ID, notes[0].ID)
	assert.Equal(t, b.ID, notes[1].ID)
}

func TestListReturnsSnapshots(t *testing.T) {
	s := newTestStore(t, nil)
	note, _ := s.CreateNote(models.CreateInput{Title: "Shared?"})

	notes, err := s.ListNotes("")
	require.NoError(t, err)
	notes[0].Likes = 999

	reread, err := s.GetNoteByID(note.ID)
	require.NoError(t, err)
	assert.Zero(t, reread.Likes, "mutating a snapshot must not touch the store")
}

func TestPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")

	s := New(path, testSeed(), newStepClock(), nil)
	require.NoError(t, s.Init())
	note, err := s.CreateNote(models.CreateInput{Title: "Survivor", Author: "QA"})
	require.NoError(t, err)
	_, err = s.ApplyVote(note.ID, models.VoteLike)
	require.NoError(t, err)
	s.Close()

	// A fresh store on the same file sees the identical collection
	reloaded := New(path, nil, newStepClock(), nil)
	require.NoError(t, reloaded.Init())
	defer reloaded.Close()

	before, err := s.ListNotes("")
	require.NoError(t, err)
	after, err := reloaded.ListNotes("")
	require.NoError(t, err)

	require.Equal(t, len(before), len(after))
	got, err := reloaded.GetNoteByID(note.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Survivor", got.Title)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, note.CreatedAt, got.CreatedAt)
}

func TestFlushOrdersWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := New(path, nil, newStepClock(), nil)
	require.NoError(t, s.Init())
	defer s.Close()

	note, _ := s.CreateNote(models.CreateInput{Title: "Busy"})
	for i := 0; i < 25; i++ {
		_, err := s.IncrementPlay(note.ID)
		require.NoError(t, err)
	}
	s.Flush()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var envelope struct {
		Notes []models.Note `json:"notes"`
	}
	require.NoError(t, json.Unmarshal(raw, &envelope))
	require.Len(t, envelope.Notes, 1)
	assert.Equal(t, 25, envelope.Notes[0].Plays, "file must reflect the final in-memory state")
}

func TestPersistWritesCounted(t *testing.T) {
	before := testutil.ToFloat64(persistWrites)

	s := newTestStore(t, testSeed())
	note, err := s.CreateNote(models.CreateInput{Title: "Compte"})
	require.NoError(t, err)
	_, err = s.IncrementPlay(note.ID)
	require.NoError(t, err)
	s.Flush()

	// Seed write plus two queued snapshots
	assert.Equal(t, 3.0, testutil.ToFloat64(persistWrites)-before)
}

func TestMutationAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	s := New(path, nil, newStepClock(), nil)
	require.NoError(t, s.Init())
	note, err := s.CreateNote(models.CreateInput{Title: "Tardive"})
	require.NoError(t, err)
	s.Close()

	// Late mutations stay in memory and must not panic on the write queue
	bumped, err := s.ApplyVote(note.ID, models.VoteLike)
	require.NoError(t, err)
	require.NotNil(t, bumped)
	assert.Equal(t, 1, bumped.Likes)

	s.Close()
}

func TestAudioKeys(t *testing.T) {
	s := newTestStore(t, nil)
	_, err := s.CreateNote(models.CreateInput{
		Title:     "With clip",
		AudioPath: "clips/note-1.webm",
		AudioMime: "audio/webm",
	})
	require.NoError(t, err)
	_, err = s.CreateNote(models.CreateInput{Title: "Without clip"})
	require.NoError(t, err)

	keys, err := s.AudioKeys()
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"clips/note-1.webm": true}, keys)
}
