// Package actions performs user operations against the repository and
// records each one on the undo stack.
//
// Every method runs the forward operation first and pushes a command only
// when it succeeded. Dispatcher returns the inverse operations the stack
// uses to undo and redo those commands; each inverse is built from
// idempotent add/remove calls so replaying it cannot drift.
package actions

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/recipeata/internal/history"
	"github.com/roach88/recipeata/internal/ir"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/undo"
)

// Repository is the storage the service needs. Implemented by
// *store.Store.
type Repository interface {
	GetRecipe(ctx context.Context, id string) (recipe.Recipe, error)
	AddRecipe(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error)
	RestoreRecipe(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, fields ir.Object, entry *recipe.HistoryEntry, limit int) (recipe.Recipe, error)
	DeleteRecipe(ctx context.Context, id string) error

	AddLike(ctx context.Context, recipeID string, like recipe.Like) (recipe.Recipe, error)
	RemoveLike(ctx context.Context, recipeID, userID string) (recipe.Recipe, error)
	ToggleLike(ctx context.Context, recipeID string, like recipe.Like) (bool, recipe.Recipe, error)
	AddComment(ctx context.Context, recipeID string, c recipe.Comment, parentID string) (recipe.Comment, error)
	DeleteComment(ctx context.Context, recipeID, commentID string) error

	GetUser(ctx context.Context, id string) (recipe.User, error)
	UpsertUser(ctx context.Context, u recipe.User) error
	UpdateProfile(ctx context.Context, id string, p recipe.Profile) (recipe.User, error)
	AddFavorite(ctx context.Context, userID, recipeID string) ([]string, error)
	RemoveFavorite(ctx context.Context, userID, recipeID string) ([]string, error)
	AddPin(ctx context.Context, userID, recipeID string) ([]string, error)
	RemovePin(ctx context.Context, userID, recipeID string) ([]string, error)
}

var _ history.Repository = Repository(nil)

// Service runs user operations for one signed-in user.
type Service struct {
	repo    Repository
	history *history.Service
	stack   *undo.Stack
	logger  *slog.Logger

	mu   sync.Mutex
	user recipe.User
}

// Option configures a Service.
type Option func(*config)

type config struct {
	logger    *slog.Logger
	stackOpts []undo.StackOption
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithStackOptions passes options to the undo stack the service creates.
func WithStackOptions(opts ...undo.StackOption) Option {
	return func(c *config) {
		c.stackOpts = append(c.stackOpts, opts...)
	}
}

// New creates a Service acting as user. It owns a new undo stack wired to
// Dispatcher.
func New(repo Repository, hist *history.Service, user recipe.User, opts ...Option) *Service {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	s := &Service{
		repo:    repo,
		history: hist,
		logger:  cfg.logger,
		user:    user,
	}
	s.stack = undo.NewStack(s.Dispatcher(), append([]undo.StackOption{undo.WithLogger(cfg.logger)}, cfg.stackOpts...)...)
	return s
}

// Stack returns the service's undo stack.
func (s *Service) Stack() *undo.Stack { return s.stack }

// User returns the acting user.
func (s *Service) User() recipe.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Service) setProfile(p recipe.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user.Profile = p
}

func (s *Service) push(ctx context.Context, p undo.Payload, description string) (undo.Command, error) {
	cmd, err := s.stack.Push(ctx, undo.NewCommand(p, description))
	if err != nil {
		return undo.Command{}, err
	}
	s.logger.Info("action recorded", "kind", cmd.Kind, "id", cmd.ID, "description", description)
	return cmd, nil
}
