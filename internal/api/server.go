package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nix177/audio-geo-notes/internal/api/middleware"
	"github.com/Nix177/audio-geo-notes/internal/config"
	"github.com/Nix177/audio-geo-notes/internal/storage"
	"github.com/Nix177/audio-geo-notes/internal/store"
)

type Server struct {
	cfg     *config.Config
	store   *store.Store
	uploads *storage.Client
	router  *gin.Engine
}

func New(cfg *config.Config, st *store.Store, uploads *storage.Client) *Server {
	if cfg.Server.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:     cfg,
		store:   st,
		uploads: uploads,
		router:  gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	// Heartbeats arrive every few seconds per active stream; don't log them.
	s.router.Use(middleware.SilentLogger("/heartbeat"))

	// CORS Configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type"}

	s.router.Use(cors.New(corsConfig))
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/health", s.Health)
		api.GET("/stats", s.GetStats)

		api.GET("/notes", s.ListNotes)
		api.POST("/notes", s.CreateNote)
		api.GET("/notes/:id", s.GetNote)
		api.POST("/notes/:id/votes", s.ApplyVote)
		api.POST("/notes/:id/report", s.ReportNote)
		api.POST("/notes/:id/play", s.IncrementPlay)

		api.GET("/streams", s.ListStreams)
		api.POST("/streams/start", s.StartStream)
		api.POST("/streams/:id/audio", s.AttachAudio)
		api.POST("/streams/:id/heartbeat", s.StreamHeartbeat)
		api.POST("/streams/:id/stop", s.StopStream)
	}

	// Serve the upload area directly when it lives on the local disk.
	if dir := s.uploads.LocalDir(); dir != "" {
		s.router.Static("/uploads", dir)
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the server on the configured address.
func (s *Server) Start(addr string) error {
	return s.router.Run(addr)
}
