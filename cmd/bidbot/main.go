package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/bidbot/config"
	"github.com/alejandrodnm/bidbot/internal/adapters/kickbase"
	"github.com/alejandrodnm/bidbot/internal/adapters/notify"
	"github.com/alejandrodnm/bidbot/internal/adapters/storage"
	"github.com/alejandrodnm/bidbot/internal/domain"
	"github.com/alejandrodnm/bidbot/internal/engine"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one cycle and exit")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full trade tables (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	slog.Info("bidbot starting",
		"config", *configPath,
		"interval", cfg.PollInterval(),
		"once", *once,
	)

	store, err := storage.NewStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	client := kickbase.NewClient(cfg.API.BaseURL, cfg.API.Token, cfg.API.LeagueID)
	snapshots := kickbase.NewSnapshotProvider(client, nil)
	notifier := notify.NewConsole(*table)

	learnerCfg := engine.DefaultLearnerConfig()
	learnerCfg.DefaultOverbidPct = cfg.Engine.DefaultOverbidPct
	learnerCfg.Window = time.Duration(cfg.Engine.LearnerWindowDays) * 24 * time.Hour
	learnerCfg.MaxOutcomes = cfg.Engine.LearnerMaxOutcomes
	learnerCfg.MinSamples = cfg.Engine.LearnerMinSamples
	learner := engine.NewLearner(learnerCfg, store)

	valuer := engine.NewValuer(engine.ValuationConfig{
		DefaultOverbidPct:  cfg.Engine.DefaultOverbidPct,
		MaxOverbidPct:      cfg.Engine.MaxOverbidPct,
		PriorityOverbidPct: cfg.Engine.PriorityOverbidPct,
		PriorityQuality:    cfg.Engine.PriorityQuality,
	}, learner)

	tracker := engine.NewTracker(engine.TrackerConfig{
		PendingTimeout: cfg.PendingTimeout(),
	}, client, store, learner)

	optimizer := engine.NewOptimizer(engine.OptimizerConfig{
		MaxDivest:      cfg.Trade.MaxDivest,
		MaxAcquire:     cfg.Trade.MaxAcquire,
		TopK:           cfg.Trade.TopK,
		MinImprovement: cfg.Trade.MinImprovement,
		Rules:          compositionRules(cfg.Trade),
	}, valuer)

	session := engine.NewSession(engine.Config{
		PollInterval: cfg.PollInterval(),
		Once:         *once,
	}, client, snapshots, notifier, tracker, learner, optimizer)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := session.Run(ctx); err != nil {
		slog.Error("session exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("bidbot stopped cleanly")
}

// compositionRules traduce la config YAML a las reglas de dominio.
func compositionRules(cfg config.TradeConfig) domain.CompositionRules {
	rules := domain.DefaultCompositionRules()
	rules.MaxHoldings = cfg.MaxHoldings
	if len(cfg.MinPerRole) > 0 {
		minPerRole := make(map[domain.Role]int, len(cfg.MinPerRole))
		for role, n := range cfg.MinPerRole {
			minPerRole[domain.Role(role)] = n
		}
		rules.MinPerRole = minPerRole
	}
	return rules
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
