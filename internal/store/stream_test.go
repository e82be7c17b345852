package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nix177/audio-geo-notes/internal/models"
)

type fakeCleaner struct {
	removed []string
}

func (f *fakeCleaner) Remove(key string) {
	f.removed = append(f.removed, key)
}

func newStreamStore(t *testing.T, cleaner AssetCleaner) *Store {
	t.Helper()
	s := New(filepath.Join(t.TempDir(), "notes.json"), nil, newStepClock(), cleaner)
	require.NoError(t, s.Init())
	t.Cleanup(s.Close)
	return s
}

func TestStartStream(t *testing.T) {
	s := newStreamStore(t, nil)

	stream, err := s.StartStream(models.CreateInput{Title: "Direct du parc"})
	require.NoError(t, err)

	assert.Contains(t, stream.ID, "stream_")
	assert.True(t, stream.IsLive)
	assert.True(t, stream.IsStream)
	assert.True(t, stream.StreamActive)
	assert.Equal(t, 1, stream.Listeners)
	assert.Equal(t, models.LiveType, stream.Type)
	assert.Equal(t, models.DefaultLiveDuration, stream.Duration)
	require.NotNil(t, stream.StreamStartedAt)
	assert.Nil(t, stream.StreamEndedAt)
}

func TestStartStreamKeepsExplicitListeners(t *testing.T) {
	s := newStreamStore(t, nil)
	listeners := 7.0

	stream, err := s.StartStream(models.CreateInput{Title: "Busy", Listeners: &listeners})
	require.NoError(t, err)
	assert.Equal(t, 7, stream.Listeners)
}

func TestAttachAudioReplacesAndCleans(t *testing.T) {
	cleaner := &fakeCleaner{}
	s := newStreamStore(t, cleaner)
	stream, err := s.StartStream(models.CreateInput{Title: "Chunked"})
	require.NoError(t, err)

	first, err := s.AttachAudio(stream.ID, "clips/stream-1.webm", "audio/webm")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "clips/stream-1.webm", first.AudioPath)
	assert.Empty(t, cleaner.removed, "nothing to supersede on the first chunk")

	second, err := s.AttachAudio(stream.ID, "clips/stream-2.webm", "audio/webm")
	require.NoError(t, err)
	assert.Equal(t, "clips/stream-2.webm", second.AudioPath)
	assert.Equal(t, []string{"clips/stream-1.webm"}, cleaner.removed)

	// Re-attaching the same key must not delete it
	_, err = s.AttachAudio(stream.ID, "clips/stream-2.webm", "audio/webm")
	require.NoError(t, err)
	assert.Len(t, cleaner.removed, 1)
}

func TestAttachAudioTargets(t *testing.T) {
	s := newStreamStore(t, nil)
	note, err := s.CreateNote(models.CreateInput{Title: "Plain note"})
	require.NoError(t, err)

	got, err := s.AttachAudio("missing", "clips/x.webm", "audio/webm")
	require.NoError(t, err)
	assert.Nil(t, got)

	// A regular note is not a valid attach target
	got, err = s.AttachAudio(note.ID, "clips/x.webm", "audio/webm")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAttachAudioAfterStop(t *testing.T) {
	s := newStreamStore(t, nil)
	stream, err := s.StartStream(models.CreateInput{Title: "Short lived"})
	require.NoError(t, err)

	_, err = s.StopStream(stream.ID)
	require.NoError(t, err)

	_, err = s.AttachAudio(stream.ID, "clips/late.webm", "audio/webm")
	assert.ErrorIs(t, err, ErrStreamEnded)
}

func TestStreamHeartbeat(t *testing.T) {
	s := newStreamStore(t, nil)
	stream, err := s.StartStream(models.CreateInput{Title: "Heartbeats"})
	require.NoError(t, err)
	before := stream.UpdatedAt

	beat, err := s.UpdateStreamHeartbeat(stream.ID, nil)
	require.NoError(t, err)
	require.NotNil(t, beat)
	assert.Equal(t, 1, beat.Listeners, "nil listeners leaves the count alone")
	assert.True(t, beat.UpdatedAt.After(before))

	beat, err = s.UpdateStreamHeartbeat(stream.ID, "12")
	require.NoError(t, err)
	assert.Equal(t, 12, beat.Listeners)

	beat, err = s.UpdateStreamHeartbeat(stream.ID, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, beat.Listeners, "counts clamp at zero")

	beat, err = s.UpdateStreamHeartbeat(stream.ID, "garbage")
	require.NoError(t, err)
	assert.Equal(t, 0, beat.Listeners, "unparsable values keep the current count")
}

func TestStreamHeartbeatAfterEnd(t *testing.T) {
	s := newStreamStore(t, nil)
	stream, err := s.StartStream(models.CreateInput{Title: "Lingering"})
	require.NoError(t, err)
	_, err = s.StopStream(stream.ID)
	require.NoError(t, err)

	// Late heartbeats succeed but never revive the stream
	beat, err := s.UpdateStreamHeartbeat(stream.ID, 3)
	require.NoError(t, err)
	require.NotNil(t, beat)
	assert.Equal(t, 3, beat.Listeners)
	assert.False(t, beat.StreamActive)
}

func TestStopStream(t *testing.T) {
	s := newStreamStore(t, nil)
	stream, err := s.StartStream(models.CreateInput{Title: "Ending"})
	require.NoError(t, err)

	stopped, err := s.StopStream(stream.ID)
	require.NoError(t, err)
	require.NotNil(t, stopped)
	assert.False(t, stopped.StreamActive)
	assert.False(t, stopped.IsLive)
	require.NotNil(t, stopped.StreamEndedAt)
	assert.Equal(t, *stopped.StreamEndedAt, stopped.UpdatedAt)

	// Stopping again is a no-op apart from fresh timestamps
	again, err := s.StopStream(stream.ID)
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.False(t, again.StreamActive)
	assert.True(t, again.UpdatedAt.After(stopped.UpdatedAt))

	missing, err := s.StopStream("missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListStreams(t *testing.T) {
	s := newStreamStore(t, nil)
	_, err := s.CreateNote(models.CreateInput{Title: "Not a stream", IsLive: true})
	require.NoError(t, err)
	active, err := s.StartStream(models.CreateInput{Title: "Running"})
	require.NoError(t, err)
	ended, err := s.StartStream(models.CreateInput{Title: "Done"})
	require.NoError(t, err)
	_, err = s.StopStream(ended.ID)
	require.NoError(t, err)

	all, err := s.ListStreams(false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	onlyActive, err := s.ListStreams(true)
	require.NoError(t, err)
	require.Len(t, onlyActive, 1)
	assert.Equal(t, active.ID, onlyActive[0].ID)
}

func TestStoppedStreamShowsInArchive(t *testing.T) {
	s := newStreamStore(t, nil)
	stream, err := s.StartStream(models.CreateInput{Title: "Will archive"})
	require.NoError(t, err)

	live, err := s.ListNotes(ModeLive)
	require.NoError(t, err)
	require.Len(t, live, 1)

	_, err = s.StopStream(stream.ID)
	require.NoError(t, err)

	live, err = s.ListNotes(ModeLive)
	require.NoError(t, err)
	assert.Empty(t, live)

	archive, err := s.ListNotes(ModeArchive)
	require.NoError(t, err)
	require.Len(t, archive, 1)
	assert.Equal(t, stream.ID, archive[0].ID)
}
