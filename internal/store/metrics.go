package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var persistWrites = promauto.NewCounter(prometheus.CounterOpts{
	Name: "audio_notes_persist_writes_total",
	Help: "Snapshots successfully written to the data file.",
})
