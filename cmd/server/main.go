// Command server runs the review API: browse generated day collections,
// aggregate statistics, and trigger regeneration over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fundingforward/outreach/internal/api"
	"github.com/fundingforward/outreach/internal/config"
	"github.com/fundingforward/outreach/internal/content"
	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/gate"
	"github.com/fundingforward/outreach/internal/pipeline"
	"github.com/fundingforward/outreach/internal/pkg/logger"
	"github.com/fundingforward/outreach/internal/store"
)

// batchRunner adapts the pipeline to the API's Runner interface,
// reloading source files on every call so edits show up without a
// restart.
type batchRunner struct {
	cfg  *config.Config
	orch *pipeline.Orchestrator
}

func (b *batchRunner) Run(ctx context.Context, day domain.Day) (*domain.DayCollection, error) {
	recipients, err := store.LoadRecipients(b.cfg.Paths.Recipients)
	if err != nil {
		return nil, err
	}
	events, err := store.LoadEvents(b.cfg.Paths.Events)
	if err != nil {
		return nil, err
	}
	return b.orch.RunDay(ctx, day, recipients, events)
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(!cfg.Logging.PlainEmails)

	st := store.New(cfg.Paths.OutputDir, cfg.Paths.SendLogDir, nil)

	runner, err := buildRunner(cfg, st)
	if err != nil {
		logger.Error("runner setup failed, generation endpoint disabled", "error", err.Error())
		runner = nil
	}

	handlers := api.NewHandlers(st, runner)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      api.Routes(handlers),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // regeneration can be slow with AI enabled
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("review API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err.Error())
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err.Error())
	}
}

// buildRunner wires a regeneration pipeline. The review server always
// uses the fallback renderer unless AI is explicitly enabled in config.
func buildRunner(cfg *config.Config, st *store.Store) (api.Runner, error) {
	loc, err := time.LoadLocation(cfg.Reference.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reference timezone: %w", err)
	}

	sender := content.SenderIdentity{
		Name:         cfg.Sender.Name,
		Title:        cfg.Sender.Title,
		Organization: cfg.Sender.Organization,
	}
	fallback, err := content.NewFallbackProvider(sender)
	if err != nil {
		return nil, err
	}

	var provider content.Provider = fallback
	if cfg.AI.Enabled && cfg.AI.Backend == "groq" && cfg.AI.APIKey != "" {
		provider, err = content.NewGroqProvider(content.GroqOptions{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		}, sender, fallback)
		if err != nil {
			return nil, err
		}
	}

	g := gate.New(cfg.Rules, loc, nil)
	processor := pipeline.NewPairProcessor(g, provider, fallback, nil)
	orch := pipeline.NewOrchestrator(processor, st, nil)
	return &batchRunner{cfg: cfg, orch: orch}, nil
}
