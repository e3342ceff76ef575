package actions

import (
	"context"
	"fmt"

	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/undo"
)

// Dispatcher returns the undo/redo handlers for every command kind the
// service pushes.
func (s *Service) Dispatcher() undo.Dispatcher {
	return undo.Dispatcher{
		undo.KindLike: {
			Undo: handle(func(ctx context.Context, p undo.LikePayload) error {
				return s.applyLike(ctx, p, !p.Liked)
			}),
			Redo: handle(func(ctx context.Context, p undo.LikePayload) error {
				return s.applyLike(ctx, p, p.Liked)
			}),
		},
		undo.KindPin: {
			Undo: handle(func(ctx context.Context, p undo.PinPayload) error {
				return s.applyPin(ctx, p.UserID, p.RecipeID, !p.Pinned)
			}),
			Redo: handle(func(ctx context.Context, p undo.PinPayload) error {
				return s.applyPin(ctx, p.UserID, p.RecipeID, p.Pinned)
			}),
		},
		undo.KindFavorite: {
			Undo: handle(func(ctx context.Context, p undo.FavoritePayload) error {
				return s.applyFavorite(ctx, p.UserID, p.RecipeID, !p.Added)
			}),
			Redo: handle(func(ctx context.Context, p undo.FavoritePayload) error {
				return s.applyFavorite(ctx, p.UserID, p.RecipeID, p.Added)
			}),
		},
		undo.KindAddRecipe: {
			Undo: handle(func(ctx context.Context, p undo.AddRecipePayload) error {
				return ignoreNotFound(s.repo.DeleteRecipe(ctx, p.Recipe.ID))
			}),
			Redo: handle(func(ctx context.Context, p undo.AddRecipePayload) error {
				_, err := s.repo.RestoreRecipe(ctx, p.Recipe)
				return err
			}),
		},
		undo.KindDeleteRecipe: {
			Undo: handle(func(ctx context.Context, p undo.DeleteRecipePayload) error {
				_, err := s.repo.RestoreRecipe(ctx, p.Recipe)
				return err
			}),
			Redo: handle(func(ctx context.Context, p undo.DeleteRecipePayload) error {
				return ignoreNotFound(s.repo.DeleteRecipe(ctx, p.Recipe.ID))
			}),
		},
		undo.KindEditRecipe: {
			Undo: handle(func(ctx context.Context, p undo.EditRecipePayload) error {
				return s.applyContent(ctx, p.RecipeID, p.After, p.Before, p.Editor)
			}),
			Redo: handle(func(ctx context.Context, p undo.EditRecipePayload) error {
				return s.applyContent(ctx, p.RecipeID, p.Before, p.After, p.Editor)
			}),
		},
		undo.KindRollback: {
			Undo: handle(func(ctx context.Context, p undo.RollbackPayload) error {
				return s.applyContent(ctx, p.RecipeID, p.After, p.Before, p.Editor)
			}),
			Redo: handle(func(ctx context.Context, p undo.RollbackPayload) error {
				_, err := s.history.Rollback(ctx, p.RecipeID, recipe.Recipe{Content: p.After}, p.Editor)
				return err
			}),
		},
		undo.KindComment: {
			Undo: handle(func(ctx context.Context, p undo.CommentPayload) error {
				return s.applyComment(ctx, p, !p.Added)
			}),
			Redo: handle(func(ctx context.Context, p undo.CommentPayload) error {
				return s.applyComment(ctx, p, p.Added)
			}),
		},
		undo.KindProfileEdit: {
			Undo: handle(func(ctx context.Context, p undo.ProfileEditPayload) error {
				_, err := s.applyProfile(ctx, p.UserID, p.Before)
				return err
			}),
			Redo: handle(func(ctx context.Context, p undo.ProfileEditPayload) error {
				_, err := s.applyProfile(ctx, p.UserID, p.After)
				return err
			}),
		},
	}
}

// handle adapts a typed payload handler to an undo.Effect.
func handle[P undo.Payload](fn func(context.Context, P) error) undo.Effect {
	return func(ctx context.Context, cmd undo.Command) error {
		p, ok := cmd.Payload.(P)
		if !ok {
			return fmt.Errorf("%s command carries %T", cmd.Kind, cmd.Payload)
		}
		return fn(ctx, p)
	}
}

func (s *Service) applyLike(ctx context.Context, p undo.LikePayload, liked bool) error {
	var err error
	if liked {
		_, err = s.repo.AddLike(ctx, p.RecipeID, p.Like)
	} else {
		_, err = s.repo.RemoveLike(ctx, p.RecipeID, p.Like.UserID)
	}
	if err != nil {
		return fmt.Errorf("like: %w", err)
	}
	return nil
}

// applyContent writes to as the recipe's content and records the change in
// its history, so undoing an edit is itself an edit.
func (s *Service) applyContent(ctx context.Context, recipeID string, from, to recipe.Content, editor recipe.Editor) error {
	diff := recipe.GenerateDiff(from, to)
	_, err := s.history.RestoreContent(ctx, recipeID, to, recipe.DiffRevision(diff), editor)
	return err
}

func (s *Service) applyComment(ctx context.Context, p undo.CommentPayload, present bool) error {
	if !present {
		return s.repo.DeleteComment(ctx, p.RecipeID, p.Comment.ID)
	}
	if _, err := s.repo.AddComment(ctx, p.RecipeID, p.Comment, p.ParentID); err != nil {
		return err
	}
	for _, reply := range p.Comment.Replies {
		if _, err := s.repo.AddComment(ctx, p.RecipeID, reply, p.Comment.ID); err != nil {
			return err
		}
	}
	return nil
}
