package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/operator-state/internal/api"
	"github.com/danielpatrickdp/operator-state/internal/cards"
	"github.com/danielpatrickdp/operator-state/internal/config"
	"github.com/danielpatrickdp/operator-state/internal/generator"
	"github.com/danielpatrickdp/operator-state/internal/logging"
	"github.com/danielpatrickdp/operator-state/internal/orchestrator"
	"github.com/danielpatrickdp/operator-state/internal/store"
	"github.com/danielpatrickdp/operator-state/internal/wearable"
)

// #region main
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	st, err := store.NewStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	provider := wearable.NewFileProvider(cfg.DataDir)

	var gen generator.Generator
	var suggester cards.Suggester
	if cfg.GenerationEnabled {
		if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			a, err := generator.NewAnthropic(key, cfg.Model)
			if err != nil {
				log.Fatalf("generator: %v", err)
			}
			gen = a
			suggester = a
		} else {
			log.Println("[RUN] ANTHROPIC_API_KEY not set, content generation falls back to templates")
		}
	}

	runner := &orchestrator.Runner{
		Store:      st,
		Provider:   provider,
		Generator:  gen,
		Cards:      cards.NewEngine(suggester),
		WindowDays: cfg.BaselineWindowDays,
	}

	mux := http.NewServeMux()
	api.NewServer(runner, nil).Register(mux)
	server := &http.Server{Addr: cfg.Addr, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go runLoop(ctx, runner, cfg.RefreshInterval)

	go func() {
		log.Printf("[API] listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[RUN] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
}

// #endregion main

// #region loop

// runLoop executes the pipeline for today at startup and on every tick.
// Failures are logged and retried on the next tick.
func runLoop(ctx context.Context, runner *orchestrator.Runner, interval time.Duration) {
	runOnce(ctx, runner)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, runner)
		}
	}
}

func runOnce(ctx context.Context, runner *orchestrator.Runner) {
	date := wearable.DateOf(time.Now().UTC())
	runCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	if _, err := runner.Run(runCtx, date, orchestrator.Opts{Trigger: logging.TriggerDailyRun}); err != nil {
		log.Printf("[RUN] %s failed: %v", date, err)
	}
}

// #endregion loop
