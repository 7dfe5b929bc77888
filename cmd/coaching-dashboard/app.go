package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dowjanes/coaching-dashboard/pkg/board"
	"github.com/dowjanes/coaching-dashboard/pkg/briefing"
	"github.com/dowjanes/coaching-dashboard/pkg/calendar"
	"github.com/dowjanes/coaching-dashboard/pkg/calendar/google"
	"github.com/dowjanes/coaching-dashboard/pkg/config"
	"github.com/dowjanes/coaching-dashboard/pkg/enrichment"
	"github.com/dowjanes/coaching-dashboard/pkg/hubspot"
	"github.com/dowjanes/coaching-dashboard/pkg/identity"
	"github.com/dowjanes/coaching-dashboard/pkg/nats"
	"github.com/dowjanes/coaching-dashboard/pkg/retry"
	"github.com/dowjanes/coaching-dashboard/pkg/sentry"
)

// App holds the main application components
type App struct {
	config    *config.Config
	logger    *slog.Logger
	providers *google.Factory
	collector *calendar.Collector
	resolver  *identity.Resolver
	contacts  *hubspot.Client
	board     *board.Board
	publisher *nats.Publisher
}

// AppOptions are the command-line overrides applied on top of the config file
type AppOptions struct {
	ConfigPath string
	Debug      bool
	// Publish connects the NATS publisher when a URL is configured
	Publish bool
}

// NewApp loads configuration and wires the pipeline
func NewApp(opts AppOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.Logging, opts.Debug)
	logger.Debug("Configuration loaded",
		"config_path", opts.ConfigPath,
		"timezone", cfg.Location().String(),
		"roster", len(cfg.Coaching.Roster))

	if err := sentry.Init(sentry.Config{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     Version,
	}, logger); err != nil {
		// Reporting is optional; keep running without it
		logger.Warn("Continuing without Sentry", "error", err)
	}

	loc := cfg.Location()
	retryer := retry.NewRetryer(&retry.Config{
		MaxAttempts:       cfg.Retry.MaxAttempts,
		InitialDelay:      cfg.Retry.InitialDelay,
		MaxDelay:          cfg.Retry.MaxDelay,
		BackoffFactor:     retry.DefaultConfig().BackoffFactor,
		Jitter:            true,
		RetriableErrors:   retry.DefaultConfig().RetriableErrors,
		RetriableStatuses: retry.DefaultConfig().RetriableStatuses,
	}, logger)

	providers := &google.Factory{
		Options: google.Options{Endpoint: cfg.Google.Endpoint, Location: loc},
		Logger:  logger,
	}
	collector := calendar.NewCollector(
		calendar.NewFilter(cfg.Coaching.Keyword),
		retryer,
		calendar.CollectorConfig{
			MaxConcurrentCalendars: cfg.Google.MaxConcurrentCalendars,
			Timeout:                cfg.Google.Timeout,
		},
		logger)

	roster := make([]identity.Coach, 0, len(cfg.Coaching.Roster))
	for _, coach := range cfg.Coaching.Roster {
		roster = append(roster, identity.Coach{Name: coach.Name, Tokens: coach.Tokens})
	}
	resolver := identity.NewResolver(roster, cfg.Coaching.Keyword)

	contacts := hubspot.NewClient(hubspot.Options{
		Token:      cfg.HubSpot.Token,
		APIURL:     cfg.HubSpot.APIURL,
		Properties: cfg.HubSpot.Properties,
		Timeout:    cfg.HubSpot.Timeout,
	}, retryer, logger)
	if cfg.HubSpot.Token == "" {
		logger.Warn("HubSpot token not configured - every client will show as not found")
	}

	orchestrator := enrichment.NewOrchestrator(enrichment.Options{
		Providers: providers,
		Collector: collector,
		Resolver:  resolver,
		Contacts:  contacts,
		Briefer:   briefing.NewSynthesizer(cfg.HubSpot.AppURL, loc),
		Location:  loc,
	}, logger)

	app := &App{
		config:    cfg,
		logger:    logger,
		providers: providers,
		collector: collector,
		resolver:  resolver,
		contacts:  contacts,
		board:     board.New(orchestrator, loc, logger),
	}

	if cfg.Sentry.DSN != "" {
		app.board.OnCommit(sentry.CommitHook(logger))
	}

	if opts.Publish && cfg.NATS.URL != "" {
		natsConfig := nats.DefaultConfig()
		natsConfig.URL = cfg.NATS.URL
		natsConfig.Subject = cfg.NATS.Subject
		publisher, err := nats.NewPublisher(natsConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
		}
		app.publisher = publisher
		app.board.OnCommit(publisher.Hook())
	}

	return app, nil
}

// Close releases external connections
func (a *App) Close() error {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error("Error closing NATS publisher", "error", err)
		}
	}
	sentry.Flush(flushTimeout)
	return nil
}

// setupLogger configures the application logger
func setupLogger(cfg config.LoggingConfig, debugMode bool) *slog.Logger {
	var level slog.Level

	// Override config level if debug mode is enabled
	if debugMode {
		level = slog.LevelDebug
	} else {
		switch cfg.Level {
		case "debug":
			level = slog.LevelDebug
		case "info":
			level = slog.LevelInfo
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		default:
			level = slog.LevelInfo
		}
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	// Logs go to stderr so command output on stdout stays pipeable
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(os.Stderr, opts)
	default:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
