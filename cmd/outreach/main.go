// Command outreach runs the grant outreach batch: eligibility gating,
// content generation, and optional delivery for one or all sequence days.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/fundingforward/outreach/internal/config"
	"github.com/fundingforward/outreach/internal/content"
	"github.com/fundingforward/outreach/internal/delivery"
	"github.com/fundingforward/outreach/internal/domain"
	"github.com/fundingforward/outreach/internal/gate"
	"github.com/fundingforward/outreach/internal/ledger"
	"github.com/fundingforward/outreach/internal/pipeline"
	"github.com/fundingforward/outreach/internal/pkg/logger"
	"github.com/fundingforward/outreach/internal/store"
)

func main() {
	var (
		configPath     = flag.String("config", "config.yaml", "Path to config file")
		dayFlag        = flag.String("day", "", "Sequence day to generate (0, 1, 3, 5, 6, 7a, 7b)")
		allDays        = flag.Bool("all", false, "Generate every sequence day")
		noAI           = flag.Bool("no-ai", false, "Use the deterministic fallback renderer (no API calls)")
		send           = flag.Bool("send", false, "Send generated emails after the batch")
		dryRun         = flag.Bool("dry-run", false, "Log what would be sent without sending")
		limit          = flag.Int("limit", 0, "Process at most N recipients (0 = all)")
		recipientsPath = flag.String("recipients", "", "Recipients JSON file (overrides config)")
		eventsPath     = flag.String("events", "", "Events JSON file (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(!cfg.Logging.PlainEmails)

	days, err := resolveDays(*dayFlag, *allDays)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	logger.Info("outreach batch starting", "run_id", runID,
		"days", fmt.Sprintf("%v", days), "no_ai", *noAI, "send", *send, "dry_run", *dryRun)

	if *recipientsPath != "" {
		cfg.Paths.Recipients = *recipientsPath
	}
	if *eventsPath != "" {
		cfg.Paths.Events = *eventsPath
	}

	recipients, err := store.LoadRecipients(cfg.Paths.Recipients)
	if err != nil {
		logger.Error("loading recipients failed", "path", cfg.Paths.Recipients, "error", err.Error())
		os.Exit(1)
	}
	events, err := store.LoadEvents(cfg.Paths.Events)
	if err != nil {
		logger.Error("loading events failed", "path", cfg.Paths.Events, "error", err.Error())
		os.Exit(1)
	}
	if *limit > 0 && len(recipients) > *limit {
		recipients = recipients[:*limit]
	}
	logger.Info("source data loaded", "recipients", len(recipients), "events", len(events))

	loc, err := time.LoadLocation(cfg.Reference.Timezone)
	if err != nil {
		logger.Error("invalid reference timezone", "timezone", cfg.Reference.Timezone, "error", err.Error())
		os.Exit(1)
	}

	sender := content.SenderIdentity{
		Name:         cfg.Sender.Name,
		Title:        cfg.Sender.Title,
		Organization: cfg.Sender.Organization,
	}
	fallback, err := content.NewFallbackProvider(sender)
	if err != nil {
		logger.Error("fallback templates failed to compile", "error", err.Error())
		os.Exit(1)
	}

	provider, err := buildProvider(ctx, cfg, sender, fallback, *noAI)
	if err != nil {
		logger.Error("content provider setup failed", "error", err.Error())
		os.Exit(1)
	}

	g := gate.New(cfg.Rules, loc, nil)
	processor := pipeline.NewPairProcessor(g, provider, fallback, nil)
	st := store.New(cfg.Paths.OutputDir, cfg.Paths.SendLogDir, nil)
	orch := pipeline.NewOrchestrator(processor, st, nil)

	cols, err := orch.RunDays(ctx, days, recipients, events)
	if err != nil {
		logger.Error("batch run interrupted", "error", err.Error())
		os.Exit(1)
	}

	printSummary(cols)

	if *send || *dryRun {
		if err := deliver(ctx, cfg, st, cols, recipients, *dryRun); err != nil {
			logger.Error("delivery failed", "error", err.Error())
			os.Exit(1)
		}
	}
}

func resolveDays(dayFlag string, allDays bool) ([]domain.Day, error) {
	if allDays && dayFlag != "" {
		return nil, fmt.Errorf("--day and --all are mutually exclusive")
	}
	if allDays {
		return domain.AllDays(), nil
	}
	if dayFlag == "" {
		return nil, fmt.Errorf("one of --day or --all is required")
	}
	day, err := domain.ParseDay(dayFlag)
	if err != nil {
		return nil, err
	}
	return []domain.Day{day}, nil
}

func buildProvider(ctx context.Context, cfg *config.Config, sender content.SenderIdentity, fallback *content.FallbackProvider, noAI bool) (content.Provider, error) {
	if noAI || !cfg.AI.Enabled {
		logger.Info("AI disabled, using fallback templates")
		return fallback, nil
	}

	switch cfg.AI.Backend {
	case "groq":
		return content.NewGroqProvider(content.GroqOptions{
			APIKey:  cfg.AI.APIKey,
			Model:   cfg.AI.Model,
			BaseURL: cfg.AI.BaseURL,
			Timeout: time.Duration(cfg.AI.TimeoutSeconds) * time.Second,
		}, sender, fallback)
	case "bedrock":
		return content.NewBedrockProvider(ctx, cfg.AI.Region, cfg.AI.Model, sender, fallback)
	default:
		return nil, fmt.Errorf("unknown AI backend %q", cfg.AI.Backend)
	}
}

func buildSender(ctx context.Context, cfg *config.Config) (delivery.Sender, error) {
	switch cfg.Delivery.Backend {
	case "smtp":
		return delivery.NewSMTPSender(delivery.SMTPOptions{
			Host:     cfg.Delivery.Host,
			Port:     cfg.Delivery.Port,
			User:     cfg.Delivery.User,
			Password: cfg.Delivery.Password,
			UseTLS:   cfg.Delivery.UseTLS(),
			From:     cfg.Delivery.From,
			FromName: cfg.Delivery.FromName,
			ReplyTo:  cfg.Delivery.ReplyTo,
		})
	case "ses":
		return delivery.NewSESSender(ctx, delivery.SESOptions{
			Region:    cfg.SES.Region,
			AccessKey: cfg.SES.AccessKey,
			SecretKey: cfg.SES.SecretKey,
			From:      cfg.Delivery.From,
			FromName:  cfg.Delivery.FromName,
			ReplyTo:   cfg.Delivery.ReplyTo,
		})
	default:
		return nil, fmt.Errorf("unknown delivery backend %q", cfg.Delivery.Backend)
	}
}

func deliver(ctx context.Context, cfg *config.Config, st *store.Store, cols []*domain.DayCollection, recipients []*domain.Recipient, dryRun bool) error {
	var sender delivery.Sender
	if !dryRun {
		if err := cfg.ValidateForSending(); err != nil {
			return err
		}
		var err error
		sender, err = buildSender(ctx, cfg)
		if err != nil {
			return err
		}
	}

	var ledg delivery.DedupeLedger
	if cfg.Ledger.Enabled && !dryRun {
		l, err := ledger.New(ctx, ledger.Options{
			Addr:     cfg.Ledger.RedisAddr,
			Password: cfg.Ledger.Password,
			DB:       cfg.Ledger.DB,
			TTL:      time.Duration(cfg.Ledger.TTLHours) * time.Hour,
		})
		if err != nil {
			return fmt.Errorf("send ledger: %w", err)
		}
		defer l.Close()
		ledg = l
	}

	dispatcher := delivery.NewDispatcher(sender, delivery.DispatcherOptions{
		DryRun:            dryRun,
		RatePerMinute:     cfg.Delivery.RatePerMinute,
		BatchSize:         cfg.Delivery.BatchSize,
		BatchPauseSeconds: cfg.Delivery.BatchPauseSeconds,
		MaxRetries:        cfg.Delivery.MaxRetries,
		RetryDelaySeconds: cfg.Delivery.RetryDelaySeconds,
		Ledger:            ledg,
	})

	totalFailed := 0
	for _, col := range cols {
		queue := delivery.BuildQueue(col, recipients)
		if len(queue) == 0 {
			logger.Info("nothing to send", "day", string(col.Day))
			continue
		}

		stats, delivered := dispatcher.SendQueue(ctx, queue)
		totalFailed += stats.Failed
		logger.Info("delivery complete", "day", string(col.Day),
			"attempted", stats.Attempted, "sent", stats.Sent,
			"failed", stats.Failed, "skipped", stats.Skipped)

		if _, err := st.WriteSendLog(&store.SendLog{
			Day:        col.Day,
			DryRun:     dryRun,
			SentAt:     time.Now().UTC(),
			Statistics: stats,
			Emails:     delivered,
		}); err != nil {
			return err
		}
	}
	if totalFailed > 0 {
		return fmt.Errorf("%d emails failed to send", totalFailed)
	}
	return nil
}

func printSummary(cols []*domain.DayCollection) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Day", "Total", "Generated", "Blocked", "Opted Out", "Deadline", "No Match", "Invalid"})

	var total domain.BatchStatistics
	for _, col := range cols {
		s := col.Statistics
		t.AppendRow(table.Row{
			string(col.Day), s.Total, s.Generated, s.Blocked,
			s.ByReason[domain.ReasonOptedOut],
			s.ByReason[domain.ReasonDeadlinePassed],
			s.ByReason[domain.ReasonNoTopicMatch],
			s.ByReason[domain.ReasonValidationFailed],
		})
		total.Total += s.Total
		total.Generated += s.Generated
		total.Blocked += s.Blocked
	}
	t.AppendFooter(table.Row{"TOTAL", total.Total, total.Generated, total.Blocked, "", "", "", ""})
	t.Render()
}
