package api

import (
	"errors"
	"log/slog"
	"math"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nix177/audio-geo-notes/internal/audio"
	"github.com/Nix177/audio-geo-notes/internal/geo"
	"github.com/Nix177/audio-geo-notes/internal/models"
	"github.com/Nix177/audio-geo-notes/internal/store"
)

// Health reports service status for load balancers and the map UI.
func (s *Server) Health(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{
		"service":   "audio-geo-notes-api",
		"status":    "up",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListNotes returns notes filtered by ?mode=archive|live (unfiltered when
// absent), newest activity first. ?lat=&lng=&radius= narrows the result to
// notes within radius meters of a point.
func (s *Server) ListNotes(c *gin.Context) {
	mode := c.Query("mode")
	if mode != "" && mode != store.ModeArchive && mode != store.ModeLive {
		respondError(c, http.StatusBadRequest, "mode must be archive or live")
		return
	}

	lat, lng, radius, geoFilter, err := parseGeoQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	notes, err := s.store.ListNotes(mode)
	if err != nil {
		s.storeError(c, err)
		return
	}

	if geoFilter {
		nearby := notes[:0]
		for _, n := range notes {
			if geo.Within(lat, lng, n.Lat, n.Lng, radius) {
				nearby = append(nearby, n)
			}
		}
		notes = nearby
	}

	respond(c, http.StatusOK, viewAll(notes))
}

// parseGeoQuery reads the optional lat/lng/radius triple. All three must be
// present together; radius is in meters and must be positive.
func parseGeoQuery(c *gin.Context) (lat, lng, radius float64, ok bool, err error) {
	latS, lngS, radS := c.Query("lat"), c.Query("lng"), c.Query("radius")
	if latS == "" && lngS == "" && radS == "" {
		return 0, 0, 0, false, nil
	}
	if latS == "" || lngS == "" || radS == "" {
		return 0, 0, 0, false, errors.New("lat, lng and radius must be provided together")
	}

	lat = models.SafeNumber(latS, math.NaN())
	lng = models.SafeNumber(lngS, math.NaN())
	radius = models.SafeNumber(radS, math.NaN())
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsNaN(radius) || radius <= 0 {
		return 0, 0, 0, false, errors.New("lat, lng and radius must be valid numbers")
	}
	return lat, lng, radius, true, nil
}

// GetNote returns one note by id. The map UI polls this while a modal is
// open on a live stream.
func (s *Server) GetNote(c *gin.Context) {
	note, err := s.store.GetNoteByID(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if note == nil {
		respondError(c, http.StatusNotFound, "note not found")
		return
	}
	respond(c, http.StatusOK, view(*note))
}

// CreateNote publishes a new capsule. Accepts JSON, or multipart with an
// optional "audio" part that lands in the upload area.
func (s *Server) CreateNote(c *gin.Context) {
	in, file, err := parseNoteRequest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	// A clip with embedded tags can stand in for missing form fields.
	if file != nil && strings.TrimSpace(in.Title) == "" {
		if info, perr := probeUpload(file); perr == nil {
			in.Title = info.Title
			if in.Title == "" {
				in.Title = audio.TitleFromFilename(file.Filename)
			}
			if strings.TrimSpace(in.Author) == "" {
				in.Author = info.Artist
			}
		}
	}

	if err := in.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if file != nil {
		key, mime, err := s.saveUpload(file, "note", in.Title, in.Author)
		if err != nil {
			slog.Error("api: clip upload failed", "error", err)
			respondError(c, http.StatusInternalServerError, "could not store audio clip")
			return
		}
		in.AudioPath = key
		in.AudioMime = mime
	}

	note, err := s.store.CreateNote(in)
	if err != nil {
		s.storeError(c, err)
		return
	}

	notesCreated.Inc()
	respond(c, http.StatusCreated, view(note))
}

// ApplyVote increments likes or downvotes. Every call counts; duplicate
// prevention, if any, lives client-side.
func (s *Server) ApplyVote(c *gin.Context) {
	var body map[string]any
	_ = c.ShouldBindJSON(&body)
	voteType, _ := body["type"].(string)

	note, err := s.store.ApplyVote(c.Param("id"), voteType)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if note == nil {
		respondError(c, http.StatusNotFound, "note not found")
		return
	}

	votesTotal.WithLabelValues(voteType).Inc()
	respond(c, http.StatusOK, view(*note))
}

func (s *Server) ReportNote(c *gin.Context) {
	note, err := s.store.ReportNote(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if note == nil {
		respondError(c, http.StatusNotFound, "note not found")
		return
	}

	reportsTotal.Inc()
	respond(c, http.StatusOK, view(*note))
}

func (s *Server) IncrementPlay(c *gin.Context) {
	note, err := s.store.IncrementPlay(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if note == nil {
		respondError(c, http.StatusNotFound, "note not found")
		return
	}

	playsTotal.Inc()
	respond(c, http.StatusOK, view(*note))
}

// GetStats returns the dashboard aggregates.
func (s *Server) GetStats(c *gin.Context) {
	notes, err := s.store.ListNotes("")
	if err != nil {
		s.storeError(c, err)
		return
	}
	active, err := s.store.ListStreams(true)
	if err != nil {
		s.storeError(c, err)
		return
	}

	live := 0
	totalReports := 0
	for _, n := range notes {
		if n.IsLive {
			live++
		}
		totalReports += n.Reports
	}

	respond(c, http.StatusOK, gin.H{
		"total":         len(notes),
		"live":          live,
		"archive":       len(notes) - live,
		"totalReports":  totalReports,
		"activeStreams": len(active),
	})
}

// storeError maps store failures onto transport responses.
func (s *Server) storeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotReady):
		respondError(c, http.StatusServiceUnavailable, "store not ready")
	case errors.Is(err, &models.ValidationError{}):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		slog.Error("api: store operation failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// noteForm is the loose JSON body for create/start. Numeric fields are `any`
// so both numbers and numeric strings survive the trip through safe-number
// coercion, mirroring what the multipart form path gets.
type noteForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Category    string `json:"category"`
	Icon        string `json:"icon"`
	Type        string `json:"type"`
	IsLive      any    `json:"isLive"`
	Duration    any    `json:"duration"`
	Lat         any    `json:"lat"`
	Lng         any    `json:"lng"`
	Listeners   any    `json:"listeners"`
}

func parseNoteRequest(c *gin.Context) (models.CreateInput, *multipart.FileHeader, error) {
	contentType := c.GetHeader("Content-Type")

	if strings.HasPrefix(contentType, "multipart/") {
		file, err := c.FormFile("audio")
		if err != nil {
			file = nil // audio part is optional
		}
		in := models.CreateInput{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Author:      c.PostForm("author"),
			Category:    c.PostForm("category"),
			Icon:        c.PostForm("icon"),
			Type:        c.PostForm("type"),
			IsLive:      models.ParseBool(c.PostForm("isLive")),
			Duration:    optNum(c.PostForm("duration")),
			Lat:         optNum(c.PostForm("lat")),
			Lng:         optNum(c.PostForm("lng")),
			Listeners:   optNum(c.PostForm("listeners")),
		}
		return in, file, nil
	}

	var form noteForm
	if err := c.ShouldBindJSON(&form); err != nil {
		return models.CreateInput{}, nil, errors.New("invalid request body")
	}
	in := models.CreateInput{
		Title:       form.Title,
		Description: form.Description,
		Author:      form.Author,
		Category:    form.Category,
		Icon:        form.Icon,
		Type:        form.Type,
		IsLive:      models.ParseBool(form.IsLive),
		Duration:    optNum(form.Duration),
		Lat:         optNum(form.Lat),
		Lng:         optNum(form.Lng),
		Listeners:   optNum(form.Listeners),
	}
	return in, nil, nil
}

// optNum implements the "optional number" contract: absent, blank, or
// unparsable values mean "not provided" so defaulting kicks in downstream.
func optNum(v any) *float64 {
	if v == nil {
		return nil
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return nil
	}
	f := models.SafeNumber(v, math.NaN())
	if math.IsNaN(f) {
		return nil
	}
	return &f
}
