package history

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/recipeata/internal/ir"
	"github.com/roach88/recipeata/internal/recipe"
)

// ErrSnapshotMismatch is returned when a stored snapshot no longer matches
// the hash recorded when its entry was written.
var ErrSnapshotMismatch = errors.New("snapshot hash mismatch")

// ErrNoEntry is returned when a rollback names a history entry that does
// not exist.
var ErrNoEntry = errors.New("no such history entry")

// Repository is the storage the service writes through.
// Implemented by *store.Store.
type Repository interface {
	GetRecipe(ctx context.Context, id string) (recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, id string, fields ir.Object, entry *recipe.HistoryEntry, limit int) (recipe.Recipe, error)
}

// Service computes diffs and appends history entries.
type Service struct {
	repo   Repository
	now    func() time.Time
	limit  int
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the clock used for EditedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLimit sets how many history entries a recipe keeps.
// Values <= 0 select recipe.DefaultHistoryLimit.
func WithLimit(n int) Option {
	return func(s *Service) {
		s.limit = n
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// New creates a Service over repo.
func New(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		now:    time.Now,
		limit:  recipe.DefaultHistoryLimit,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.limit <= 0 {
		s.limit = recipe.DefaultHistoryLimit
	}
	return s
}

// Limit returns the history cap in effect.
func (s *Service) Limit() int { return s.limit }

// AppendHistory writes fields to the recipe and records one history entry
// for the change. snapshot is the recipe as it was before the edit; its own
// history is dropped. Both are persisted by a single repository write.
func (s *Service) AppendHistory(
	ctx context.Context,
	recipeID string,
	fields ir.Object,
	rev recipe.Revision,
	editor recipe.Editor,
	snapshot recipe.Recipe,
) (recipe.Recipe, error) {
	snap := snapshot.Snapshot()
	hash, err := snapshotHash(snap)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("append history %s: %w", recipeID, err)
	}

	entry := &recipe.HistoryEntry{
		EditedAt:     s.now().UTC(),
		EditedBy:     editor,
		Diff:         rev,
		Snapshot:     snap,
		SnapshotHash: hash,
	}

	r, err := s.repo.UpdateRecipe(ctx, recipeID, fields, entry, s.limit)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("append history %s: %w", recipeID, err)
	}

	s.logger.Debug("history appended",
		"recipe_id", recipeID,
		"editor", editor.UserID,
		"revision", rev.String(),
		"entries", len(r.History),
	)
	return r, nil
}

// SaveEdit applies patch to the stored recipe. When the patch changes no
// compared field the repository is not touched and changed is false.
func (s *Service) SaveEdit(ctx context.Context, recipeID string, patch recipe.Patch, editor recipe.Editor) (diff recipe.Diff, changed bool, err error) {
	before, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		return recipe.Diff{}, false, fmt.Errorf("save edit: %w", err)
	}

	after := patch.Apply(before.Content)
	diff = recipe.GenerateDiff(before.Content, after)
	if diff.IsEmpty() {
		s.logger.Debug("edit has no changes", "recipe_id", recipeID)
		return recipe.Diff{}, false, nil
	}

	fields, err := patch.Fields()
	if err != nil {
		return recipe.Diff{}, false, fmt.Errorf("save edit %s: %w", recipeID, err)
	}

	if _, err := s.AppendHistory(ctx, recipeID, fields, recipe.DiffRevision(diff), editor, before); err != nil {
		return recipe.Diff{}, false, fmt.Errorf("save edit: %w", err)
	}
	return diff, true, nil
}

// Entries returns the recipe's history, newest first, without entries whose
// structured diff is empty.
func (s *Service) Entries(ctx context.Context, recipeID string) ([]recipe.HistoryEntry, error) {
	r, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return visible(r.History), nil
}

func visible(history []recipe.HistoryEntry) []recipe.HistoryEntry {
	out := make([]recipe.HistoryEntry, 0, len(history))
	for _, e := range history {
		if e.Diff.IsEmpty() {
			continue
		}
		out = append(out, e)
	}
	return out
}

// RollbackTo restores the snapshot of the index-th entry returned by
// Entries. The stored snapshot is checked against its recorded hash first.
func (s *Service) RollbackTo(ctx context.Context, recipeID string, index int, editor recipe.Editor) (recipe.Recipe, error) {
	entries, err := s.Entries(ctx, recipeID)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("rollback: %w", err)
	}
	if index < 0 || index >= len(entries) {
		return recipe.Recipe{}, fmt.Errorf("rollback %s: entry %d of %d: %w", recipeID, index, len(entries), ErrNoEntry)
	}

	entry := entries[index]
	if entry.SnapshotHash != "" {
		got, err := snapshotHash(entry.Snapshot)
		if err != nil {
			return recipe.Recipe{}, fmt.Errorf("rollback %s: %w", recipeID, err)
		}
		if got != entry.SnapshotHash {
			return recipe.Recipe{}, fmt.Errorf("rollback %s: entry %d: %w", recipeID, index, ErrSnapshotMismatch)
		}
	}
	return s.Rollback(ctx, recipeID, entry.Snapshot, editor)
}

// Rollback writes the editable content of snapshot as the recipe's new
// state and records the change with the note "rollback". Likes, comments
// and other non-content fields are left as they are now.
func (s *Service) Rollback(ctx context.Context, recipeID string, snapshot recipe.Recipe, editor recipe.Editor) (recipe.Recipe, error) {
	return s.restoreContent(ctx, recipeID, snapshot.Content, recipe.NoteRevision(recipe.RollbackNote), editor)
}

// RestoreContent writes c as the recipe's content, recording rev. Used to
// reverse a rollback.
func (s *Service) RestoreContent(ctx context.Context, recipeID string, c recipe.Content, rev recipe.Revision, editor recipe.Editor) (recipe.Recipe, error) {
	return s.restoreContent(ctx, recipeID, c, rev, editor)
}

func (s *Service) restoreContent(ctx context.Context, recipeID string, c recipe.Content, rev recipe.Revision, editor recipe.Editor) (recipe.Recipe, error) {
	current, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("rollback: %w", err)
	}

	fields, err := recipe.FullPatch(c).Fields()
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("rollback %s: %w", recipeID, err)
	}

	r, err := s.AppendHistory(ctx, recipeID, fields, rev, editor, current)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("rollback: %w", err)
	}
	s.logger.Info("recipe content restored", "recipe_id", recipeID, "revision", rev.String())
	return r, nil
}

func snapshotHash(snap recipe.Recipe) (string, error) {
	doc, err := recipe.ToDocument(snap)
	if err != nil {
		return "", err
	}
	return ir.ContentHash(ir.DomainSnapshot, doc)
}
