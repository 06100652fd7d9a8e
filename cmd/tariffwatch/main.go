package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tariffwatch/internal/collector"
	"tariffwatch/internal/config"
	"tariffwatch/internal/scheduler"
	"tariffwatch/internal/store"
	"tariffwatch/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] tariffwatch starting...")

	// .env is optional; real environment variables win either way
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// One-shot endpoint check before anything recurring starts
	if err := collector.ValidateEndpoint(ctx, cfg.Source.APIURL, cfg.Timeout()); err != nil {
		log.Fatalf("[FATAL] endpoint validation: %v", err)
	}

	// Init snapshot store
	var st store.Store
	if cfg.Database.SQLitePath != "" {
		ss, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite store failed, using noop: %v", err)
			st = store.NewNoopStore()
		} else {
			st = ss
			defer ss.Close()
		}
	} else {
		st = store.NewNoopStore()
	}

	// Init fetcher and collector
	fetcher := collector.NewAMBFetcher(cfg.Source.APIURL, cfg.Timeout())
	log.Printf("[INFO] data source: %s (%s)", fetcher.Name(), cfg.Source.APIURL)

	col := collector.NewCollector(fetcher, collector.RetryPolicy{
		FastAttempts:     cfg.Refresh.FastAttempts,
		FastInterval:     cfg.FastInterval(),
		ExtendedAttempts: cfg.Refresh.ExtendedAttempts,
		ExtendedInterval: cfg.ExtendedInterval(),
	}, st)

	// Resume from the last persisted snapshot so stale-serve works across restarts
	if snap, err := st.Load(); err != nil {
		log.Printf("[WARN] load cached snapshot: %v", err)
	} else if snap != nil {
		col.Restore(snap)
		log.Printf("[INFO] restored cached snapshot from %s", snap.FetchedAt.Format(time.RFC3339))
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col.Update)
	sched.Register(cfg.RefreshInterval())
	sched.Start()
	defer sched.Stop()

	// Serve the resolved state
	srv := web.NewServer(cfg.Server.ListenAddr, col)
	srv.Start()

	// First refresh right away so readers have data before the first tick
	go sched.RunNow()

	log.Println("[INFO] tariffwatch is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	log.Println("[INFO] tariffwatch stopped")
}
