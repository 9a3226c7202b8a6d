package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/SignalLab/internal/api/twelvedata"
	"github.com/Alias1177/SignalLab/internal/config"
	"github.com/Alias1177/SignalLab/internal/database"
	"github.com/Alias1177/SignalLab/internal/source"
	"github.com/Alias1177/SignalLab/internal/trading/backtest"
	"github.com/Alias1177/SignalLab/internal/trading/optimizer"
	"github.com/Alias1177/SignalLab/models"
)

func main() {
	var (
		configPath = flag.String("config", "", "YAML configuration file")
		dataPath   = flag.String("data", "", "snapshot file (.csv or .parquet); fetched from Twelve Data when empty")
		isCandles  = flag.Bool("candles", false, "the -data file holds raw candles")
		symbol     = flag.String("symbol", "", "symbol to backtest (default: first configured symbol)")
		weightsArg = flag.String("weights", "", `weights such as "SMA=1.5,RSI=1"; default weights when empty`)
		useStored  = flag.Bool("stored", false, "use the stored optimized weights for the symbol")
		tradesCSV  = flag.String("trades", "", "write the trade log as CSV to this file")
		jsonOut    = flag.String("json", "", "write the full result as JSON to this file")
	)
	flag.Parse()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	setupLogging(cfg.LogLevel)

	sym := *symbol
	if sym == "" && len(cfg.Symbols) > 0 {
		sym = cfg.Symbols[0]
	}

	data, err := loadData(ctx, cfg, sym, *dataPath, *isCandles)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load data")
	}
	log.Info().Str("symbol", sym).Int("periods", len(data)).Msg("Data loaded")

	weights, label, err := resolveWeights(ctx, cfg, sym, *weightsArg, *useStored)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve weights")
	}
	log.Info().Str("weights", weights.String()).Str("source", label).Msg("Using weights")

	engine, err := backtest.NewEngine(cfg.Backtest.WithTimeframe(cfg.Timeframe))
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid backtest configuration")
	}

	start := time.Now()
	result, err := engine.Run(data, weights)
	if err != nil {
		log.Fatal().Err(err).Msg("Backtest failed")
	}
	log.Info().Dur("took", time.Since(start)).Msg("Backtest completed")

	fmt.Println(backtest.FormatResults(result))

	if *tradesCSV != "" {
		if err := writeTrades(*tradesCSV, result.Trades); err != nil {
			log.Fatal().Err(err).Msg("Failed to write trades")
		}
	}
	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, result); err != nil {
			log.Fatal().Err(err).Msg("Failed to write result")
		}
	}
}

func loadData(ctx context.Context, cfg *config.Config, symbol, path string, isCandles bool) ([]models.IndicatorSnapshot, error) {
	if path != "" {
		return source.LoadFile(path, isCandles, cfg.Indicators)
	}
	if cfg.TwelveData.APIKey == "" {
		return nil, fmt.Errorf("either -data or TWELVE_API_KEY is required")
	}
	client := twelvedata.NewClient(twelvedata.ClientOptions{
		APIKey:         cfg.TwelveData.APIKey,
		RequestTimeout: time.Duration(cfg.TwelveData.RequestTimeout) * time.Second,
		RequestsPerSec: cfg.TwelveData.RequestsPerSec,
	})
	return source.New(client, cfg.Indicators, cfg.Timeframe, cfg.HistoryDays).Load(ctx, symbol)
}

func resolveWeights(ctx context.Context, cfg *config.Config, symbol, arg string, stored bool) (models.WeightVector, string, error) {
	switch {
	case stored:
		store, err := database.Open(ctx, cfg.Storage.PostgresDSN, cfg.Storage.SQLitePath)
		if err != nil {
			return models.WeightVector{}, "", err
		}
		defer store.Close()
		rec, err := store.Get(ctx, database.Key{Symbol: symbol, Timeframe: cfg.Timeframe, TrainingWindow: cfg.Optimizer.TrainingWindow})
		if err != nil {
			return models.WeightVector{}, "", err
		}
		return rec.Weights, "stored:" + rec.ComboLabel, nil
	case arg != "":
		w, err := models.ParseWeights(arg)
		return w, "flag", err
	}
	return optimizer.DefaultWeights, "default", nil
}

func writeTrades(path string, trades []models.Trade) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := backtest.WriteTradesCSV(f, trades); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func setupSignalHandling(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		log.Info().Msg("Shutdown signal received, exiting...")
		cancel()
		os.Exit(0)
	}()
}

// setupLogging configures the logger
func setupLogging(logLevel string) {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = log.Output(output)

	// Set log level from config
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log.Logger = log.Logger.Level(level)
}
