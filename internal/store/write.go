package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/recipeata/internal/ir"
	"github.com/roach88/recipeata/internal/recipe"
)

// protectedFields can never be changed by UpdateRecipe.
var protectedFields = []string{"id", "createdAt", "createdById", "history", "likes", "comments", "viewedAt"}

// AddRecipe stores a new recipe. An empty ID is assigned from the store's
// generator; createdAt and updatedAt are stamped now. Likes, comments and
// history start empty.
func (s *Store) AddRecipe(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	if r.ID == "" {
		r.ID = s.ids.Generate()
	}
	now := s.timestamp()
	r.CreatedAt = now
	r.UpdatedAt = now
	r.Likes = nil
	r.Comments = nil
	r.ViewedAt = nil
	r.History = nil

	if err := s.insertRecipe(ctx, r, false); err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe: %w", err)
	}
	r.Normalize()
	return r, nil
}

// RestoreRecipe writes r back exactly as given, keeping its id and
// timestamps, so commands that reference the id stay valid. Restoring over
// an existing recipe replaces it.
func (s *Store) RestoreRecipe(ctx context.Context, r recipe.Recipe) (recipe.Recipe, error) {
	if r.ID == "" {
		return recipe.Recipe{}, fmt.Errorf("restore recipe: empty id")
	}
	if err := s.insertRecipe(ctx, r, true); err != nil {
		return recipe.Recipe{}, fmt.Errorf("restore recipe %s: %w", r.ID, err)
	}
	r.Normalize()
	return r, nil
}

func (s *Store) insertRecipe(ctx context.Context, r recipe.Recipe, replace bool) error {
	doc, err := recipe.ToDocument(r)
	if err != nil {
		return err
	}
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO recipes (id, created_by_id, created_at, updated_at, doc)
		VALUES (?, ?, ?, ?, ?)
	`
	if replace {
		query += `
		ON CONFLICT(id) DO UPDATE SET
			created_by_id = excluded.created_by_id,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at,
			doc = excluded.doc
		`
	}

	_, err = s.db.ExecContext(ctx, query,
		r.ID,
		r.CreatedByID,
		r.CreatedAt.UnixNano(),
		r.UpdatedAt.UnixNano(),
		data,
	)
	return err
}

// UpdateRecipe applies a partial field update to a recipe and, when entry
// is non-nil, prepends entry to its history and keeps only the limit most
// recent entries (recipe.DefaultHistoryLimit when limit <= 0).
//
// Undefined values in fields are stripped; null and "" are stored. The
// fields, updatedAt and the truncated history are written by one UPDATE
// inside one transaction.
func (s *Store) UpdateRecipe(ctx context.Context, id string, fields ir.Object, entry *recipe.HistoryEntry, limit int) (recipe.Recipe, error) {
	if limit <= 0 {
		limit = recipe.DefaultHistoryLimit
	}

	patch := ir.StripObject(fields)
	for _, k := range protectedFields {
		delete(patch, k)
	}

	var historyEntry ir.Object
	if entry != nil {
		var err error
		historyEntry, err = ir.FromStruct(entry)
		if err != nil {
			return recipe.Recipe{}, fmt.Errorf("write recipe %s: history entry: %w", id, err)
		}
	}

	return s.updateDocument(ctx, id, func(doc ir.Object) (ir.Object, error) {
		doc = ir.Merge(doc, patch)
		if historyEntry != nil {
			doc["history"] = prependHistory(doc["history"], historyEntry, limit)
		}
		return doc, nil
	}, true)
}

// prependHistory puts entry first and truncates the list to limit entries.
func prependHistory(existing ir.Value, entry ir.Object, limit int) ir.Array {
	old, _ := existing.(ir.Array)
	history := make(ir.Array, 0, len(old)+1)
	history = append(history, entry)
	history = append(history, old...)
	if len(history) > limit {
		history = history[:limit]
	}
	return history
}

// DeleteRecipe removes a recipe. Returns an error matching
// recipe.ErrNotFound if it does not exist.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete recipe %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete recipe %s: %w", id, recipe.ErrNotFound)
	}
	return nil
}

// updateDocument runs a read-modify-write of one recipe document inside a
// transaction. When touch is set, updatedAt is stamped now.
func (s *Store) updateDocument(ctx context.Context, id string, fn func(ir.Object) (ir.Object, error), touch bool) (recipe.Recipe, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: begin: %w", id, err)
	}
	defer tx.Rollback() // no-op after Commit

	// Read the current document inside the transaction
	var data string
	var updatedAt int64
	err = tx.QueryRowContext(ctx, `SELECT doc, updated_at FROM recipes WHERE id = ?`, id).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, recipe.ErrNotFound)
	}
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, err)
	}

	// Apply the caller's change
	doc, err = fn(doc)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, err)
	}

	if touch {
		now := s.timestamp()
		doc["updatedAt"] = timeValue(now)
		updatedAt = now.UnixNano()
	}

	// Validate and re-encode
	encoded, err := encodeDocument(doc)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE recipes SET doc = ?, updated_at = ? WHERE id = ?`,
		encoded, updatedAt, id,
	); err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: commit: %w", id, err)
	}

	r, err := decodeRecipe(encoded)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("write recipe %s: %w", id, err)
	}
	return r, nil
}

// mutateRecipe is updateDocument over the typed form of the recipe.
func (s *Store) mutateRecipe(ctx context.Context, id string, fn func(*recipe.Recipe) error, touch bool) (recipe.Recipe, error) {
	return s.updateDocument(ctx, id, func(doc ir.Object) (ir.Object, error) {
		r, err := recipe.FromDocument(doc)
		if err != nil {
			return nil, err
		}
		if err := fn(&r); err != nil {
			return nil, err
		}
		return recipe.ToDocument(r)
	}, touch)
}
