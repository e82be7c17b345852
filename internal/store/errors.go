package store

import (
	"errors"

	"github.com/Nix177/audio-geo-notes/internal/models"
)

var (
	// ErrNotReady is returned when an operation runs before Init completed.
	ErrNotReady = errors.New("store not initialized")

	// ErrStreamEnded rejects audio attachment on a stream that already
	// stopped. Ended is a terminal state; a new stream needs a new note.
	ErrStreamEnded = errors.New("stream already ended")

	// ErrInvalidVote rejects vote types other than like/dislike.
	ErrInvalidVote = &models.ValidationError{Msg: "type must be like or dislike"}
)
