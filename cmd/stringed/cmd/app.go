package cmd

import (
	"io"
	"log/slog"

	"github.com/sandrolain/gostringed/internal/config"
	"github.com/sandrolain/gostringed/internal/history"
	"github.com/sandrolain/gostringed/internal/logging"
	"github.com/sandrolain/gostringed/pkg/evaluator"
	"github.com/sandrolain/gostringed/pkg/parser"
)

// app holds what every subcommand needs.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	ev      *evaluator.Evaluator
	history *history.Store // nil when disabled or unavailable
}

func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// newApp loads the configuration and builds the logger and evaluator.
// With withHistory set the history store is opened too; failing to open it
// is logged, not fatal.
func newApp(logOut io.Writer, withHistory bool) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logOut, cfg.Log, verbose)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		ev:     evaluator.New(evalOptions(cfg, logger)...),
	}

	if withHistory && cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			logger.Warn("history disabled", "path", cfg.History.Path, "error", err)
		} else {
			a.history = store
		}
	}
	return a, nil
}

func parserOptions(cfg *config.Config) []parser.CompileOption {
	return []parser.CompileOption{parser.WithMaxDepth(cfg.Parser.MaxDepth)}
}

func evalOptions(cfg *config.Config, logger *slog.Logger) []evaluator.EvalOption {
	return []evaluator.EvalOption{
		evaluator.WithMaxDepth(cfg.Eval.MaxDepth),
		evaluator.WithTimeout(cfg.Eval.Timeout.Duration),
		evaluator.WithCaching(cfg.Eval.Caching),
		evaluator.WithCacheSize(cfg.Eval.CacheSize),
		evaluator.WithLogger(logger),
		evaluator.WithDebug(verbose),
		evaluator.WithParserOptions(parserOptions(cfg)...),
	}
}

func (a *app) close() {
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.logger.Warn("closing history", "error", err)
		}
	}
}
