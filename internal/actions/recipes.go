package actions

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/undo"
)

// AddRecipe creates a recipe authored by the acting user.
func (s *Service) AddRecipe(ctx context.Context, c recipe.Content, subImages []recipe.SubImage) (recipe.Recipe, error) {
	user := s.User()
	r, err := s.repo.AddRecipe(ctx, recipe.Recipe{
		Content:     c.Clone(),
		SubImages:   subImages,
		CreatedByID: user.ID,
		CreatedBy:   user.Author(),
	})
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("add recipe: %w", err)
	}

	if _, err := s.push(ctx, undo.AddRecipePayload{Recipe: r}, fmt.Sprintf("Added recipe %q", r.Title)); err != nil {
		return r, err
	}
	return r, nil
}

// EditRecipe applies patch and records the edit in the recipe's history.
// When nothing changes, nothing is written and no command is pushed.
func (s *Service) EditRecipe(ctx context.Context, id string, patch recipe.Patch) (recipe.Diff, bool, error) {
	before, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return recipe.Diff{}, false, fmt.Errorf("edit recipe: %w", err)
	}

	editor := s.User().Editor()
	diff, changed, err := s.history.SaveEdit(ctx, id, patch, editor)
	if err != nil || !changed {
		return diff, false, err
	}

	payload := undo.EditRecipePayload{
		RecipeID: id,
		Before:   before.Content,
		After:    patch.Apply(before.Content),
		Diff:     diff,
		Editor:   editor,
	}
	if _, err := s.push(ctx, payload, fmt.Sprintf("Edited recipe %q", payload.After.Title)); err != nil {
		return diff, true, err
	}
	return diff, true, nil
}

// DeleteRecipe removes a recipe. The full document, history included, is
// kept on the command so undo can restore it under the same id.
func (s *Service) DeleteRecipe(ctx context.Context, id string) error {
	r, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if err := s.repo.DeleteRecipe(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}

	_, err = s.push(ctx, undo.DeleteRecipePayload{Recipe: r}, fmt.Sprintf("Deleted recipe %q", r.Title))
	return err
}

// Rollback restores the index-th visible history entry of a recipe.
func (s *Service) Rollback(ctx context.Context, id string, index int) (recipe.Recipe, error) {
	before, err := s.repo.GetRecipe(ctx, id)
	if err != nil {
		return recipe.Recipe{}, fmt.Errorf("rollback: %w", err)
	}

	editor := s.User().Editor()
	r, err := s.history.RollbackTo(ctx, id, index, editor)
	if err != nil {
		return recipe.Recipe{}, err
	}

	payload := undo.RollbackPayload{
		RecipeID: id,
		Before:   before.Content,
		After:    r.Content,
		Editor:   editor,
	}
	if _, err := s.push(ctx, payload, fmt.Sprintf("Rolled back recipe %q", r.Title)); err != nil {
		return r, err
	}
	return r, nil
}

func ignoreNotFound(err error) error {
	if errors.Is(err, recipe.ErrNotFound) {
		return nil
	}
	return err
}
