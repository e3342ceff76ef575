package actions

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/undo"
)

// commentPreviewLen is how many characters of a comment a description shows.
const commentPreviewLen = 20

// Like toggles the acting user's like on a recipe and reports whether the
// recipe is liked afterwards.
func (s *Service) Like(ctx context.Context, recipeID string) (bool, error) {
	like := s.User().Like()
	liked, r, err := s.repo.ToggleLike(ctx, recipeID, like)
	if err != nil {
		return false, fmt.Errorf("like: %w", err)
	}

	desc := fmt.Sprintf("Liked %q", r.Title)
	if !liked {
		desc = fmt.Sprintf("Unliked %q", r.Title)
	}
	if _, err := s.push(ctx, undo.LikePayload{RecipeID: recipeID, Like: like, Liked: liked}, desc); err != nil {
		return liked, err
	}
	return liked, nil
}

// AddComment posts text on a recipe, as a reply when parentID is set.
func (s *Service) AddComment(ctx context.Context, recipeID, text, parentID string) (recipe.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return recipe.Comment{}, fmt.Errorf("add comment: empty text: %w", recipe.ErrInvalid)
	}

	user := s.User()
	c, err := s.repo.AddComment(ctx, recipeID, recipe.Comment{
		UserID:    user.ID,
		CreatedBy: user.Author(),
		Text:      text,
	}, parentID)
	if err != nil {
		return recipe.Comment{}, err
	}

	payload := undo.CommentPayload{RecipeID: recipeID, ParentID: parentID, Comment: c, Added: true}
	if _, err := s.push(ctx, payload, "Added comment: "+preview(text)); err != nil {
		return c, err
	}
	return c, nil
}

// DeleteComment removes a comment or reply. Undo puts it back, with its
// replies, at the end of its list.
func (s *Service) DeleteComment(ctx context.Context, recipeID, commentID string) error {
	r, err := s.repo.GetRecipe(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	c, parentID, ok := locateComment(r, commentID)
	if !ok {
		return fmt.Errorf("delete comment %s: %w", commentID, recipe.ErrNotFound)
	}
	if err := s.repo.DeleteComment(ctx, recipeID, commentID); err != nil {
		return err
	}

	payload := undo.CommentPayload{RecipeID: recipeID, ParentID: parentID, Comment: c, Added: false}
	_, err = s.push(ctx, payload, "Deleted comment: "+preview(c.Text))
	return err
}

// locateComment finds a comment or reply and the id of its parent.
func locateComment(r recipe.Recipe, id string) (recipe.Comment, string, bool) {
	for _, c := range r.Comments {
		if c.ID == id {
			return c, "", true
		}
		for _, reply := range c.Replies {
			if reply.ID == id {
				return reply, c.ID, true
			}
		}
	}
	return recipe.Comment{}, "", false
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= commentPreviewLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:commentPreviewLen]) + "..."
}

// Pin pins a recipe for the acting user.
func (s *Service) Pin(ctx context.Context, recipeID string) error {
	return s.setPin(ctx, recipeID, true)
}

// Unpin removes a pin.
func (s *Service) Unpin(ctx context.Context, recipeID string) error {
	return s.setPin(ctx, recipeID, false)
}

func (s *Service) setPin(ctx context.Context, recipeID string, pinned bool) error {
	userID := s.User().ID
	if err := s.applyPin(ctx, userID, recipeID, pinned); err != nil {
		return err
	}
	desc := "Pinned " + recipeID
	if !pinned {
		desc = "Unpinned " + recipeID
	}
	_, err := s.push(ctx, undo.PinPayload{RecipeID: recipeID, UserID: userID, Pinned: pinned}, desc)
	return err
}

func (s *Service) applyPin(ctx context.Context, userID, recipeID string, pinned bool) error {
	var err error
	if pinned {
		_, err = s.repo.AddPin(ctx, userID, recipeID)
	} else {
		_, err = s.repo.RemovePin(ctx, userID, recipeID)
	}
	if err != nil {
		return fmt.Errorf("pin: %w", err)
	}
	return nil
}

// Favorite adds a recipe to the acting user's favorites.
func (s *Service) Favorite(ctx context.Context, recipeID string) error {
	return s.setFavorite(ctx, recipeID, true)
}

// Unfavorite removes a recipe from the favorites.
func (s *Service) Unfavorite(ctx context.Context, recipeID string) error {
	return s.setFavorite(ctx, recipeID, false)
}

func (s *Service) setFavorite(ctx context.Context, recipeID string, added bool) error {
	userID := s.User().ID
	if err := s.applyFavorite(ctx, userID, recipeID, added); err != nil {
		return err
	}
	desc := "Added favorite " + recipeID
	if !added {
		desc = "Removed favorite " + recipeID
	}
	_, err := s.push(ctx, undo.FavoritePayload{RecipeID: recipeID, UserID: userID, Added: added}, desc)
	return err
}

func (s *Service) applyFavorite(ctx context.Context, userID, recipeID string, added bool) error {
	var err error
	if added {
		_, err = s.repo.AddFavorite(ctx, userID, recipeID)
	} else {
		_, err = s.repo.RemoveFavorite(ctx, userID, recipeID)
	}
	if err != nil {
		return fmt.Errorf("favorite: %w", err)
	}
	return nil
}

// EditProfile replaces the acting user's profile.
func (s *Service) EditProfile(ctx context.Context, p recipe.Profile) (recipe.User, error) {
	user := s.User()
	before := user.Profile
	if stored, err := s.repo.GetUser(ctx, user.ID); err == nil {
		before = stored.Profile
	}

	u, err := s.applyProfile(ctx, user.ID, p)
	if err != nil {
		return recipe.User{}, err
	}

	payload := undo.ProfileEditPayload{UserID: user.ID, Before: before, After: p}
	if _, err := s.push(ctx, payload, "Edited profile"); err != nil {
		return u, err
	}
	return u, nil
}

func (s *Service) applyProfile(ctx context.Context, userID string, p recipe.Profile) (recipe.User, error) {
	u, err := s.repo.UpdateProfile(ctx, userID, p)
	if err != nil {
		return recipe.User{}, fmt.Errorf("edit profile: %w", err)
	}
	if userID == s.User().ID {
		s.setProfile(u.Profile)
	}
	return u, nil
}
