package store

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/roach88/recipeata/internal/recipe"
)

// AddLike records like on a recipe. Liking twice is a no-op.
func (s *Store) AddLike(ctx context.Context, recipeID string, like recipe.Like) (recipe.Recipe, error) {
	if like.UserID == "" {
		return recipe.Recipe{}, fmt.Errorf("add like: empty user id")
	}
	return s.mutateRecipe(ctx, recipeID, func(r *recipe.Recipe) error {
		if !r.LikedBy(like.UserID) {
			r.Likes = append(r.Likes, like)
		}
		return nil
	}, true)
}

// RemoveLike removes userID's like from a recipe. Removing an absent like
// is a no-op.
func (s *Store) RemoveLike(ctx context.Context, recipeID, userID string) (recipe.Recipe, error) {
	return s.mutateRecipe(ctx, recipeID, func(r *recipe.Recipe) error {
		r.Likes = slices.DeleteFunc(r.Likes, func(l recipe.Like) bool { return l.UserID == userID })
		return nil
	}, true)
}

// ToggleLike likes the recipe if the user has not, and unlikes it
// otherwise. Reports whether the recipe is liked afterwards.
func (s *Store) ToggleLike(ctx context.Context, recipeID string, like recipe.Like) (bool, recipe.Recipe, error) {
	var liked bool
	r, err := s.mutateRecipe(ctx, recipeID, func(r *recipe.Recipe) error {
		if r.LikedBy(like.UserID) {
			r.Likes = slices.DeleteFunc(r.Likes, func(l recipe.Like) bool { return l.UserID == like.UserID })
			liked = false
			return nil
		}
		r.Likes = append(r.Likes, like)
		liked = true
		return nil
	}, true)
	if err != nil {
		return false, recipe.Recipe{}, err
	}
	return liked, r, nil
}

// AddComment appends a comment to a recipe, or a reply to the comment
// parentID when it is non-empty. An empty comment ID is generated and a zero
// CreatedAt is stamped now. Adding a comment whose id already exists is a
// no-op, so a redo can replay the same comment.
func (s *Store) AddComment(ctx context.Context, recipeID string, c recipe.Comment, parentID string) (recipe.Comment, error) {
	if c.ID == "" {
		c.ID = s.ids.Generate()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.timestamp()
	}
	c.Replies = nil

	_, err := s.mutateRecipe(ctx, recipeID, func(r *recipe.Recipe) error {
		if _, exists := r.FindComment(c.ID); exists {
			return nil
		}
		if parentID == "" {
			r.Comments = append(r.Comments, c)
			return nil
		}
		for i := range r.Comments {
			if r.Comments[i].ID == parentID {
				r.Comments[i].Replies = append(r.Comments[i].Replies, c)
				return nil
			}
		}
		return fmt.Errorf("parent comment %s: %w", parentID, recipe.ErrNotFound)
	}, true)
	if err != nil {
		return recipe.Comment{}, fmt.Errorf("add comment: %w", err)
	}
	return c, nil
}

// DeleteComment removes a comment or reply by id. Deleting a top-level
// comment removes its replies too. Deleting an absent id is a no-op.
func (s *Store) DeleteComment(ctx context.Context, recipeID, commentID string) error {
	_, err := s.mutateRecipe(ctx, recipeID, func(r *recipe.Recipe) error {
		r.Comments = slices.DeleteFunc(r.Comments, func(c recipe.Comment) bool { return c.ID == commentID })
		for i := range r.Comments {
			r.Comments[i].Replies = slices.DeleteFunc(r.Comments[i].Replies, func(c recipe.Comment) bool {
				return c.ID == commentID
			})
		}
		return nil
	}, true)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	return nil
}

// RecordView stamps the time userID last viewed a recipe. It does not
// change updatedAt.
func (s *Store) RecordView(ctx context.Context, recipeID, userID string) error {
	now := s.timestamp()
	_, err := s.mutateRecipe(ctx, recipeID, func(r *recipe.Recipe) error {
		if r.ViewedAt == nil {
			r.ViewedAt = make(map[string]time.Time)
		}
		r.ViewedAt[userID] = now
		return nil
	}, false)
	if err != nil {
		return fmt.Errorf("record view: %w", err)
	}
	return nil
}
