package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Draft is a loosely typed note record: untrusted client input, a row from
// the persisted JSON file, or an entry from a seed dataset. Keys follow the
// wire names of Note.
type Draft map[string]any

// SafeNumber coerces an arbitrary value into a finite float64, falling back
// when the input is missing, unparsable, or non-finite.
func SafeNumber(v any, fallback float64) float64 {
	switch x := v.(type) {
	case nil:
		return fallback
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fallback
		}
		return x
	case float32:
		return SafeNumber(float64(x), fallback)
	case int:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint64:
		return float64(x)
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return fallback
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return fallback
		}
		return f
	default:
		return fallback
	}
}

// ParseBool coerces a value into a boolean. Strings accept the usual
// encodings ("true", "1", "yes", "on", case-insensitive, trimmed); anything
// else falls back to a truthy cast.
func ParseBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "1", "yes", "on":
			return true
		}
		return false
	case nil:
		return false
	default:
		return SafeNumber(v, 0) != 0
	}
}

// ClampInt rounds a value to the nearest integer and enforces a floor.
func ClampInt(v float64, min int) int {
	r := int(math.Round(v))
	if r < min {
		return min
	}
	return r
}

// Normalize converts a Draft into a fully defaulted Note satisfying every
// invariant of the data model. It is pure and idempotent: normalizing an
// already normalized note yields an identical note, with createdAt and
// updatedAt preserved when present and stamped with now otherwise.
func Normalize(d Draft, now time.Time) Note {
	isLive := ParseBool(d["isLive"])
	isStream := ParseBool(d["isStream"])

	durationDefault := float64(DefaultDuration)
	typeDefault := DefaultType
	if isLive {
		durationDefault = DefaultLiveDuration
		typeDefault = LiveType
	}

	n := Note{
		ID:          strField(d, "id", ""),
		Title:       strField(d, "title", DefaultTitle),
		Description: strField(d, "description", ""),
		Category:    strField(d, "category", DefaultCategory),
		Icon:        strField(d, "icon", DefaultIcon),
		Type:        strField(d, "type", typeDefault),
		Author:      strField(d, "author", DefaultAuthor),

		Duration:   ClampInt(SafeNumber(d["duration"], durationDefault), MinDuration),
		BaseHealth: ClampInt(SafeNumber(d["baseHealth"], DefaultBaseHealth), 0),

		IsLive:   isLive,
		IsStream: isStream,
		// A note that is not a stream can never accept stream audio.
		StreamActive:    isStream && ParseBool(d["streamActive"]),
		StreamStartedAt: timeField(d, "streamStartedAt"),
		StreamEndedAt:   timeField(d, "streamEndedAt"),

		Lat: SafeNumber(d["lat"], DefaultLat),
		Lng: SafeNumber(d["lng"], DefaultLng),

		Likes:     ClampInt(SafeNumber(d["likes"], 0), 0),
		Downvotes: ClampInt(SafeNumber(d["downvotes"], 0), 0),
		Reports:   ClampInt(SafeNumber(d["reports"], 0), 0),
		Plays:     ClampInt(SafeNumber(d["plays"], 0), 0),
		Listeners: ClampInt(SafeNumber(d["listeners"], 0), 0),

		AudioPath: strField(d, "audioPath", ""),
		AudioMime: strField(d, "audioMime", ""),
	}

	n.CreatedAt = stampField(d, "createdAt", now)
	n.UpdatedAt = stampField(d, "updatedAt", now)

	return n
}

func strField(d Draft, key, fallback string) string {
	s, ok := d[key].(string)
	if !ok {
		return fallback
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	return s
}

func timeField(d Draft, key string) *time.Time {
	switch x := d[key].(type) {
	case time.Time:
		t := x
		return &t
	case *time.Time:
		return x
	case string:
		if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(x)); err == nil {
			return &t
		}
	}
	return nil
}

func stampField(d Draft, key string, now time.Time) time.Time {
	if t := timeField(d, key); t != nil {
		return *t
	}
	return now
}
