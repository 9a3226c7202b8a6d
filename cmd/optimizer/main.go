package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalLab/internal/api/twelvedata"
	"github.com/Alias1177/SignalLab/internal/config"
	"github.com/Alias1177/SignalLab/internal/database"
	"github.com/Alias1177/SignalLab/internal/notify"
	"github.com/Alias1177/SignalLab/internal/scheduler"
	"github.com/Alias1177/SignalLab/internal/source"
	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
	"github.com/Alias1177/SignalLab/models"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		symbolsArg = flag.String("symbols", "", "comma separated symbols (default: configured symbols)")
		force      = flag.Bool("force", false, "re-optimize symbols that already have stored weights")
		once       = flag.Bool("once", false, "run a single batch and exit instead of following the schedule")
		cacheDir   = flag.String("cache", "", "directory for cached candles (Parquet)")
		dataPath   = flag.String("data", "", "optimize a single snapshot file instead of fetching symbols")
		isCandles  = flag.Bool("candles", false, "the -data file holds raw candles")
		jsonOut    = flag.String("json", "", "write the batch results as JSON to this file")
	)
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)
	log.Info().Msg("Starting weight optimizer")

	symbols := cfg.Symbols
	if *symbolsArg != "" {
		symbols = strings.Split(*symbolsArg, ",")
	}

	opt, err := optimizer.New(cfg.Backtest.WithTimeframe(cfg.Timeframe), cfg.Optimizer)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid optimizer configuration")
	}
	candidates, err := optimizer.Candidates(cfg.Optimizer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build candidates")
	}
	log.Info().Int("candidates", len(candidates)).Str("mode", string(cfg.Optimizer.Mode)).Msg("Candidates ready")

	if *dataPath != "" {
		data, err := source.LoadFile(*dataPath, *isCandles, cfg.Indicators)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load data")
		}
		optimizeFile(ctx, opt, candidates, data, *jsonOut)
		return
	}

	store, err := database.Open(ctx, cfg.Storage.PostgresDSN, cfg.Storage.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open weight store")
	}
	defer store.Close()

	var notifier notify.Notifier = notify.Noop{}
	if cfg.Telegram.BotToken != "" {
		tg, err := notify.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Error().Err(err).Msg("Telegram disabled")
		} else {
			notifier = tg
		}
	}

	client := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveData.APIKey,
		RequestTimeout: time.Duration(cfg.TwelveData.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.TwelveData.RequestsPerSec,
	})
	src := source.New(client, cfg.Indicators, cfg.Timeframe, cfg.HistoryDays)
	src.CacheDir = *cacheDir

	runner := scheduler.NewRunner(opt, store, notifier, src.Load, candidates, cfg.Timeframe)
	runner.Force = *force

	if *once || cfg.Schedule.OptimizeCron == "" {
		results, err := runner.RunOnce(ctx, symbols)
		if err != nil {
			log.Error().Err(err).Msg("Batch notification failed")
		}
		if *jsonOut != "" {
			if err := writeJSON(*jsonOut, results); err != nil {
				log.Fatal().Err(err).Msg("Failed to write results")
			}
		}
		return
	}

	sched := scheduler.NewScheduler(ctx, runner, symbols)
	if err := sched.Register(cfg.Schedule.OptimizeCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register schedule")
	}
	if cfg.Schedule.RunOnStart {
		go sched.RunNow()
	}
	sched.Start()
	log.Info().Str("cron", cfg.Schedule.OptimizeCron).Msg("Waiting for scheduled runs")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	log.Info().Msg("Shutdown signal received, stopping...")
	cancel()
	sched.Stop()
}

func optimizeFile(ctx context.Context, opt *optimizer.Optimizer, candidates []optimizer.Candidate, data []models.IndicatorSnapshot, jsonOut string) {
	res, err := opt.Optimize(ctx, data, candidates)
	if err != nil {
		log.Fatal().Err(err).Msg("Optimization failed")
	}
	log.Info().
		Str("best", res.BestComboLabel).
		Str("weights", res.BestWeights.String()).
		Float64("roi", res.Performance.ROI).
		Msg("Best weights")
	if jsonOut != "" {
		if err := writeJSON(jsonOut, res); err != nil {
			log.Fatal().Err(err).Msg("Failed to write result")
		}
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
