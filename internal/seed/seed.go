// Package seed provides the dataset used to populate a brand new data file.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Nix177/audio-geo-notes/internal/models"
)

// Default returns the built-in demo dataset: a handful of capsules around
// central Paris so a fresh install has something on the map.
func Default() []models.Draft {
	return []models.Draft{
		{
			"title":       "Ambiance du canal Saint-Martin",
			"description": "Clapotis et conversations au bord du canal.",
			"category":    "🎧 Ambiance",
			"icon":        "🎧",
			"type":        "story",
			"author":      "Léa",
			"duration":    95,
			"lat":         48.8712,
			"lng":         2.3652,
			"likes":       12,
			"plays":       48,
		},
		{
			"title":       "Conseil du boulanger",
			"description": "Le secret d'une bonne baguette, selon Marcel.",
			"category":    "🥖 Quartier",
			"icon":        "🥖",
			"type":        "tip",
			"author":      "Marcel",
			"duration":    42,
			"lat":         48.8529,
			"lng":         2.3499,
			"likes":       25,
			"plays":       102,
		},
		{
			"title":     "Capsule locale demo",
			"category":  "Communaute",
			"icon":      "AUDIO",
			"type":      "story",
			"author":    "Demo",
			"duration":  120,
			"lat":       48.857,
			"lng":       2.353,
			"likes":     10,
			"downvotes": 1,
			"plays":     32,
		},
	}
}

// LoadFile reads an operator-supplied seed dataset from a YAML file: a list
// of loosely typed note records, normalized on store init like any other.
func LoadFile(path string) ([]models.Draft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var drafts []models.Draft
	if err := yaml.Unmarshal(raw, &drafts); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return drafts, nil
}
