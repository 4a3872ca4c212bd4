package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/conorfennell/brainstack/internal/ai"
	"github.com/conorfennell/brainstack/internal/config"
	"github.com/conorfennell/brainstack/internal/deck"
	"github.com/conorfennell/brainstack/internal/importer"
	"github.com/conorfennell/brainstack/internal/practice"
	"github.com/conorfennell/brainstack/internal/progress"
	"github.com/conorfennell/brainstack/internal/storage"
	"github.com/conorfennell/brainstack/internal/study"
)

var rootCmd = &cobra.Command{
	Use:   "brainstack",
	Short: "A personal flashcard study tool",
	Long: `BrainStack keeps flashcards in decks, records how well you know them
and builds AI-generated practice tests from their content.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	config.RegisterFlags(rootCmd.PersistentFlags())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setupLogger(env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "development" {
		cfg = zap.NewDevelopmentConfig()
	}
	return buildLogger(cfg)
}

func buildLogger(cfg zap.Config) (*zap.Logger, error) {
	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// app is everything a command needs, wired from the configuration.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *storage.DB
	decks    *deck.Service
	study    *study.Engine
	practice *practice.Engine
	progress *progress.Service
	importer *importer.Importer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}
	logger, err := setupLogger(cfg.Log.Env)
	if err != nil {
		return nil, err
	}

	db, err := storage.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	store := storage.NewStore(db)

	var generator practice.Generator = ai.NewClient(ai.Config{
		URL:         cfg.AI.URL,
		Model:       cfg.AI.Model,
		APIKey:      cfg.AI.APIKey,
		Timeout:     cfg.AI.Timeout,
		Temperature: cfg.AI.Temperature,
		MaxTokens:   cfg.AI.MaxTokens,
	}, logger)
	if cfg.AI.Fallback {
		generator = ai.WithFallback(generator, ai.Fallback{}, logger)
	}

	decks := deck.NewService(store, logger)
	return &app{
		cfg:      cfg,
		log:      logger,
		db:       db,
		decks:    decks,
		study:    study.NewEngine(store, logger),
		practice: practice.NewEngine(store, generator, ai.NewFuzzyGrader(cfg.Grading.Threshold), logger),
		progress: progress.NewService(store),
		importer: importer.New(decks, cfg.Import.ReposDir, logger),
	}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.log.Warn("failed to close database", zap.Error(err))
	}
	_ = a.log.Sync()
}
