package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/recipeata/internal/recipe"
)

// GetRecipe returns the recipe with the given id.
// Returns an error matching recipe.ErrNotFound if it does not exist.
func (s *Store) GetRecipe(ctx context.Context, id string) (recipe.Recipe, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM recipes WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return recipe.Recipe{}, fmt.Errorf("read recipe %s: %w", id, recipe.ErrNotFound)
	}
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("read recipe %s: %w", id, err)
	}

	r, err := decodeRecipe(data)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("read recipe %s: %w", id, err)
	}
	return r, nil
}

// HasRecipe reports whether a recipe with the given id exists.
func (s *Store) HasRecipe(ctx context.Context, id string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes WHERE id = ?`, id).Scan(&n); err != nil {
		return false, fmt.Errorf("read recipe %s: %w", id, err)
	}
	return n > 0, nil
}

// ListRecipes returns up to limit recipes, newest first.
// A non-positive limit means DefaultListLimit.
//
// Returns an empty slice (not nil) if there are no recipes.
func (s *Store) ListRecipes(ctx context.Context, limit int) ([]recipe.Recipe, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return s.queryRecipes(ctx, `
		SELECT doc FROM recipes
		ORDER BY created_at DESC, id COLLATE BINARY ASC
		LIMIT ?
	`, limit)
}

// ListRecipesByAuthor returns the recipes created by userID, newest first.
func (s *Store) ListRecipesByAuthor(ctx context.Context, userID string) ([]recipe.Recipe, error) {
	return s.queryRecipes(ctx, `
		SELECT doc FROM recipes
		WHERE created_by_id = ?
		ORDER BY created_at DESC, id COLLATE BINARY ASC
	`, userID)
}

// CountRecipes returns the number of stored recipes.
func (s *Store) CountRecipes(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipes: %w", err)
	}
	return n, nil
}

func (s *Store) queryRecipes(ctx context.Context, query string, args ...any) ([]recipe.Recipe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recipes: %w", err)
	}
	defer rows.Close()

	recipes := []recipe.Recipe{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		r, err := decodeRecipe(data)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipes: %w", err)
	}
	return recipes, nil
}
