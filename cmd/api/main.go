package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Nix177/audio-geo-notes/internal/api"
	"github.com/Nix177/audio-geo-notes/internal/clock"
	"github.com/Nix177/audio-geo-notes/internal/config"
	"github.com/Nix177/audio-geo-notes/internal/seed"
	"github.com/Nix177/audio-geo-notes/internal/storage"
	"github.com/Nix177/audio-geo-notes/internal/store"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Audio Geo Notes API...")

	// 1. Setup Configuration
	cfg := config.Load()

	// 2. Upload area
	uploads := storage.New(cfg)

	// 3. Seed dataset: operator file wins, built-in demo otherwise
	dataset := seed.Default()
	if cfg.Store.SeedFile != "" {
		loaded, err := seed.LoadFile(cfg.Store.SeedFile)
		if err != nil {
			log.Fatalf("❌ Seed file rejected: %v", err)
		}
		dataset = loaded
	}

	// 4. Initialize the store (fatal on anything but a missing file)
	st := store.New(cfg.Store.DataFile, dataset, clock.RealClock{}, uploads)
	if err := st.Init(); err != nil {
		log.Fatalf("❌ Store init failed: %v", err)
	}
	defer st.Close()

	// 5. Sweep clips no note references anymore
	if used, err := st.AudioKeys(); err == nil {
		uploads.SweepOrphans(func(key string) bool { return used[key] })
	}

	// 6. Setup Metrics
	go func() {
		http.Handle("/_metrics", promhttp.Handler())
		log.Printf("📊 Metrics exposed at http://localhost%s/_metrics", cfg.Server.MetricsAddr)
		if err := http.ListenAndServe(cfg.Server.MetricsAddr, nil); err != nil {
			log.Printf("⚠️ Metrics server error: %v", err)
		}
	}()

	// 7. Start Server
	srv := api.New(cfg, st, uploads)

	log.Printf("🚀 API Server starting on %s", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("❌ Server failed to start: %v", err)
	}
}
