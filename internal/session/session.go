// Package session wires one user's working set: the repository, the
// history service, the action service with its undo stack, and the
// progress tracker. Sessions are independent; nothing is shared through
// package state.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/recipeata/internal/actions"
	"github.com/roach88/recipeata/internal/history"
	"github.com/roach88/recipeata/internal/ident"
	"github.com/roach88/recipeata/internal/progress"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/store"
	"github.com/roach88/recipeata/internal/undo"
)

// Session is the root object for one signed-in user.
type Session struct {
	Store    *store.Store
	History  *history.Service
	Actions  *actions.Service
	Stack    *undo.Stack
	Progress *progress.Tracker

	logger *slog.Logger
}

type options struct {
	now          func() time.Time
	ids          ident.Generator
	logger       *slog.Logger
	historyLimit int
}

// Option configures a Session.
type Option func(*options)

// WithClock sets the clock for history entries and command timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithIDs sets the generator for command ids.
func WithIDs(gen ident.Generator) Option {
	return func(o *options) {
		o.ids = gen
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHistoryLimit sets how many history entries each recipe keeps.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// New creates a session for user over s. The user record is created in the
// store if it does not exist yet; an existing record is left as stored and
// loaded into the session.
func New(ctx context.Context, s *store.Store, user recipe.User, opts ...Option) (*Session, error) {
	o := options{
		now:          time.Now,
		ids:          ident.UUIDv7Generator{},
		logger:       slog.Default(),
		historyLimit: recipe.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if user.ID == "" {
		return nil, fmt.Errorf("new session: empty user id")
	}
	stored, err := s.GetUser(ctx, user.ID)
	switch {
	case err == nil:
		user = stored
	case errors.Is(err, recipe.ErrNotFound):
		if err := s.UpsertUser(ctx, user); err != nil {
			return nil, fmt.Errorf("new session: %w", err)
		}
	default:
		return nil, fmt.Errorf("new session: %w", err)
	}

	tracker := progress.New()
	hist := history.New(s,
		history.WithClock(o.now),
		history.WithLimit(o.historyLimit),
		history.WithLogger(o.logger),
	)
	svc := actions.New(s, hist, user,
		actions.WithLogger(o.logger),
		actions.WithStackOptions(
			undo.WithClock(o.now),
			undo.WithIDGenerator(o.ids),
			undo.WithObserver(tracker),
		),
	)

	o.logger.Info("session started", "user_id", user.ID, "history_limit", hist.Limit())
	return &Session{
		Store:    s,
		History:  hist,
		Actions:  svc,
		Stack:    svc.Stack(),
		Progress: tracker,
		logger:   o.logger,
	}, nil
}

// User returns the session's user.
func (s *Session) User() recipe.User {
	return s.Actions.User()
}

// Undo reverses the most recent action.
func (s *Session) Undo(ctx context.Context) (undo.Command, bool, error) {
	return s.Stack.Undo(ctx)
}

// Redo re-applies the most recently undone action.
func (s *Session) Redo(ctx context.Context) (undo.Command, bool, error) {
	return s.Stack.Redo(ctx)
}

// Search returns the stored recipes matching f.
func (s *Session) Search(ctx context.Context, f recipe.Filter) ([]recipe.Recipe, error) {
	all, err := s.Store.ListRecipes(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return recipe.Search(all, f), nil
}
