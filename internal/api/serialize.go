package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Nix177/audio-geo-notes/internal/models"
	"github.com/Nix177/audio-geo-notes/internal/moderation"
)

// noteView is a Note plus the derived moderation fields. Score and status
// are computed at response time and never persisted.
type noteView struct {
	models.Note
	Score       int    `json:"score"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
	AudioURL    string `json:"audioUrl,omitempty"`
}

func view(n models.Note) noteView {
	tier := moderation.Status(n)
	v := noteView{
		Note:        n,
		Score:       moderation.Score(n),
		Status:      string(tier),
		StatusLabel: moderation.Label(tier),
	}
	if n.AudioPath != "" {
		v.AudioURL = "/uploads/" + n.AudioPath
	}
	return v
}

func viewAll(notes []models.Note) []noteView {
	out := make([]noteView, 0, len(notes))
	for _, n := range notes {
		out = append(out, view(n))
	}
	return out
}

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"ok": true, "data": data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"ok": false, "error": msg})
}
