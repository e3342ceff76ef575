package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/recipeata/internal/config"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/session"
	"github.com/roach88/recipeata/internal/store"
)

// env is what a command needs once flags are parsed: settings, an open
// store and a logger.
type env struct {
	cfg    config.Config
	store  *store.Store
	logger *slog.Logger
	out    *OutputFormatter
}

// newLogger returns a text logger on w, at debug level when verbose.
func newLogger(verbose bool, w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *RootOptions) (config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, WrapExitError(ExitCommandError, "invalid config", err)
	}
	return cfg, nil
}

// openEnv loads the configuration and opens the database. Callers must
// Close the env.
func openEnv(opts *RootOptions, cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger := newLogger(opts.Verbose, cmd.ErrOrStderr())
	logger.Debug("opening database", "path", cfg.Database)
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	return &env{
		cfg:    cfg,
		store:  st,
		logger: logger,
		out:    newFormatter(opts, cmd),
	}, nil
}

// Close closes the store.
func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Error("error closing database", "error", err)
	}
}

// session starts a session for the configured user.
func (e *env) session(ctx context.Context) (*session.Session, error) {
	sess, err := session.New(ctx, e.store, e.cfg.RecipeUser(),
		session.WithLogger(e.logger),
		session.WithHistoryLimit(e.cfg.HistoryLimit),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start session", err)
	}
	return sess, nil
}

// classify maps a domain error to an exit error and a response code.
func classify(message string, err error) (*ExitError, string) {
	switch {
	case errors.Is(err, recipe.ErrNotFound):
		return WrapExitError(ExitCommandError, message, err), "E_NOT_FOUND"
	case errors.Is(err, recipe.ErrInvalid):
		return WrapExitError(ExitCommandError, message, err), "E_INVALID"
	default:
		return WrapExitError(ExitFailure, message, err), "E_FAILED"
	}
}

// fail reports err through the formatter and returns the matching exit
// error.
func (e *env) fail(message string, err error) error {
	exitErr, code := classify(message, err)
	var details any
	if verrs, ok := recipe.AsValidationErrors(err); ok {
		details = verrs
	}
	if outErr := e.out.Error(code, exitErr.Error(), details); outErr != nil {
		return outErr
	}
	return exitErr
}

// contextOf returns the command's context, or Background outside Execute.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
