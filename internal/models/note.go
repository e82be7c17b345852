package models

import (
	"fmt"
	"strings"
	"time"
)

// Note represents a single audio capsule pinned to map coordinates.
// A live stream is a Note created through the streaming flow, with the
// stream fields populated.
type Note struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
	Type        string `json:"type"`
	Author      string `json:"author"`

	// Duration is in seconds. Clips shorter than MinDuration are rounded up.
	Duration   int `json:"duration"`
	BaseHealth int `json:"baseHealth"`

	IsLive          bool       `json:"isLive"`
	IsStream        bool       `json:"isStream"`
	StreamActive    bool       `json:"streamActive"`
	StreamStartedAt *time.Time `json:"streamStartedAt"`
	StreamEndedAt   *time.Time `json:"streamEndedAt"`

	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	Likes     int `json:"likes"`
	Downvotes int `json:"downvotes"`
	Reports   int `json:"reports"`
	Plays     int `json:"plays"`
	Listeners int `json:"listeners"`

	// AudioPath is the key of the most recent clip inside the managed
	// upload area. Empty means no audio attached yet.
	AudioPath string `json:"audioPath,omitempty"`
	AudioMime string `json:"audioMime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Defaults applied by Normalize.
const (
	DefaultTitle    = "Note sans titre"
	DefaultAuthor   = "Anonyme"
	DefaultCategory = "🎧 Ambiance"
	DefaultIcon     = "🎧"
	DefaultType     = "story"
	LiveType        = "live"

	MinDuration         = 5
	DefaultDuration     = 120
	DefaultLiveDuration = 180

	DefaultBaseHealth = 80

	// Fallback drop point (Paris) for notes posted without coordinates.
	DefaultLat = 48.8566
	DefaultLng = 2.3522
)

// Vote types accepted by the vote endpoint.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
)

// CreateInput carries the caller-supplied fields for a new note or stream.
// Pointer numerics distinguish "absent" from zero.
type CreateInput struct {
	Title       string
	Description string
	Author      string
	Category    string
	Icon        string
	Type        string
	IsLive      bool

	Duration  *float64
	Lat       *float64
	Lng       *float64
	Listeners *float64

	// AudioPath/AudioMime are set by the upload path once the clip landed
	// in the managed upload area; clients never supply them directly.
	AudioPath string
	AudioMime string
}

// Validate checks the request-level requirements before any defaulting.
// Author is deliberately not required; it falls back to DefaultAuthor.
func (in CreateInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Msg: "title is required"}
	}
	return nil
}

// ValidationError marks input the caller must fix; it is never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Is enables errors.Is matching against any ValidationError.
func (e *ValidationError) Is(target error) bool {
	_, ok := target.(*ValidationError)
	return ok
}

// Draft converts a Note back into its loose representation. Mainly useful
// for tests and seed tooling that want to re-normalize a record.
func (n Note) Draft() Draft {
	d := Draft{
		"id":           n.ID,
		"title":        n.Title,
		"description":  n.Description,
		"category":     n.Category,
		"icon":         n.Icon,
		"type":         n.Type,
		"author":       n.Author,
		"duration":     float64(n.Duration),
		"baseHealth":   float64(n.BaseHealth),
		"isLive":       n.IsLive,
		"isStream":     n.IsStream,
		"streamActive": n.StreamActive,
		"lat":          n.Lat,
		"lng":          n.Lng,
		"likes":        float64(n.Likes),
		"downvotes":    float64(n.Downvotes),
		"reports":      float64(n.Reports),
		"plays":        float64(n.Plays),
		"listeners":    float64(n.Listeners),
		"audioPath":    n.AudioPath,
		"audioMime":    n.AudioMime,
		"createdAt":    n.CreatedAt.Format(time.RFC3339Nano),
		"updatedAt":    n.UpdatedAt.Format(time.RFC3339Nano),
	}
	if n.StreamStartedAt != nil {
		d["streamStartedAt"] = n.StreamStartedAt.Format(time.RFC3339Nano)
	}
	if n.StreamEndedAt != nil {
		d["streamEndedAt"] = n.StreamEndedAt.Format(time.RFC3339Nano)
	}
	return d
}

func (n Note) String() string {
	return fmt.Sprintf("Note(%s %q by %s)", n.ID, n.Title, n.Author)
}
