package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_notes_created_total",
		Help: "Notes published through the API.",
	})
	votesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audio_notes_votes_total",
		Help: "Votes applied, by type.",
	}, []string{"type"})
	reportsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_notes_reports_total",
		Help: "Reports filed against notes.",
	})
	playsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_notes_plays_total",
		Help: "Play events recorded.",
	})
	streamsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_notes_streams_started_total",
		Help: "Live streams opened.",
	})
	streamsStopped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audio_notes_streams_stopped_total",
		Help: "Live streams stopped.",
	})
)
