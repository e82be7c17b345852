package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nix177/audio-geo-notes/internal/models"
	"github.com/Nix177/audio-geo-notes/internal/store"
)

// ListStreams returns stream notes; ?active=true narrows to streams still
// accepting audio.
func (s *Server) ListStreams(c *gin.Context) {
	activeOnly := models.ParseBool(c.Query("active"))

	streams, err := s.store.ListStreams(activeOnly)
	if err != nil {
		s.storeError(c, err)
		return
	}
	respond(c, http.StatusOK, viewAll(streams))
}

// StartStream opens a fresh live stream, optionally seeded with a first
// audio chunk from the multipart form.
func (s *Server) StartStream(c *gin.Context) {
	in, file, err := parseNoteRequest(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := in.Validate(); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if file != nil {
		key, mime, err := s.saveUpload(file, "stream", in.Title, in.Author)
		if err != nil {
			slog.Error("api: stream clip upload failed", "error", err)
			respondError(c, http.StatusInternalServerError, "could not store audio clip")
			return
		}
		in.AudioPath = key
		in.AudioMime = mime
	}

	stream, err := s.store.StartStream(in)
	if err != nil {
		s.storeError(c, err)
		return
	}

	streamsStarted.Inc()
	respond(c, http.StatusCreated, view(stream))
}

// AttachAudio replaces the stream's clip with a newly uploaded chunk.
// 404 when the id isn't a stream, 409 once the stream has ended.
func (s *Server) AttachAudio(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		respondError(c, http.StatusBadRequest, "audio file is required")
		return
	}

	key, mime, err := s.saveUpload(file, "stream", "", "")
	if err != nil {
		slog.Error("api: stream chunk upload failed", "error", err)
		respondError(c, http.StatusInternalServerError, "could not store audio clip")
		return
	}

	stream, err := s.store.AttachAudio(c.Param("id"), key, mime)
	if errors.Is(err, store.ErrStreamEnded) {
		// The chunk never gets referenced; drop it again.
		s.uploads.Remove(key)
		respondError(c, http.StatusConflict, "stream already ended")
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	if stream == nil {
		s.uploads.Remove(key)
		respondError(c, http.StatusNotFound, "stream not found")
		return
	}

	respond(c, http.StatusOK, view(*stream))
}

// StreamHeartbeat refreshes liveness and optionally the listener count.
func (s *Server) StreamHeartbeat(c *gin.Context) {
	var body map[string]any
	_ = c.ShouldBindJSON(&body)

	stream, err := s.store.UpdateStreamHeartbeat(c.Param("id"), body["listeners"])
	if err != nil {
		s.storeError(c, err)
		return
	}
	if stream == nil {
		respondError(c, http.StatusNotFound, "stream not found")
		return
	}
	respond(c, http.StatusOK, view(*stream))
}

// StopStream moves the stream to its terminal state and archives the note.
func (s *Server) StopStream(c *gin.Context) {
	stream, err := s.store.StopStream(c.Param("id"))
	if err != nil {
		s.storeError(c, err)
		return
	}
	if stream == nil {
		respondError(c, http.StatusNotFound, "stream not found")
		return
	}

	streamsStopped.Inc()
	respond(c, http.StatusOK, view(*stream))
}
