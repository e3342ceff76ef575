package undo

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/recipeata/internal/recipe"
)

// Payload is the data a command carries. The set of implementations is
// closed: one struct per Kind.
type Payload interface {
	Kind() Kind
	payload()
}

// LikePayload records a like toggle. Liked is the state after the forward
// operation.
type LikePayload struct {
	RecipeID string      `json:"recipeId"`
	Like     recipe.Like `json:"like"`
	Liked    bool        `json:"liked"`
}

// PinPayload records a pin or unpin.
type PinPayload struct {
	RecipeID string `json:"recipeId"`
	UserID   string `json:"userId"`
	Pinned   bool   `json:"pinned"`
}

// FavoritePayload records a favorite or unfavorite.
type FavoritePayload struct {
	RecipeID string `json:"recipeId"`
	UserID   string `json:"userId"`
	Added    bool   `json:"added"`
}

// AddRecipePayload holds the recipe as it was created.
type AddRecipePayload struct {
	Recipe recipe.Recipe `json:"recipe"`
}

// EditRecipePayload holds the content on both sides of an edit.
type EditRecipePayload struct {
	RecipeID string         `json:"recipeId"`
	Before   recipe.Content `json:"before"`
	After    recipe.Content `json:"after"`
	Diff     recipe.Diff    `json:"diff"`
	Editor   recipe.Editor  `json:"editor"`
}

// DeleteRecipePayload holds the full recipe as it was before deletion.
type DeleteRecipePayload struct {
	Recipe recipe.Recipe `json:"recipe"`
}

// CommentPayload records a comment being added or deleted. ParentID is set
// for replies.
type CommentPayload struct {
	RecipeID string         `json:"recipeId"`
	ParentID string         `json:"parentId,omitempty"`
	Comment  recipe.Comment `json:"comment"`
	Added    bool           `json:"added"`
}

// ProfileEditPayload holds a user's profile on both sides of an edit.
type ProfileEditPayload struct {
	UserID string         `json:"userId"`
	Before recipe.Profile `json:"before"`
	After  recipe.Profile `json:"after"`
}

// RollbackPayload holds the content before the rollback and the snapshot
// content it restored.
type RollbackPayload struct {
	RecipeID string         `json:"recipeId"`
	Before   recipe.Content `json:"before"`
	After    recipe.Content `json:"after"`
	Editor   recipe.Editor  `json:"editor"`
}

func (LikePayload) Kind() Kind         { return KindLike }
func (PinPayload) Kind() Kind          { return KindPin }
func (FavoritePayload) Kind() Kind     { return KindFavorite }
func (AddRecipePayload) Kind() Kind    { return KindAddRecipe }
func (EditRecipePayload) Kind() Kind   { return KindEditRecipe }
func (DeleteRecipePayload) Kind() Kind { return KindDeleteRecipe }
func (CommentPayload) Kind() Kind      { return KindComment }
func (ProfileEditPayload) Kind() Kind  { return KindProfileEdit }
func (RollbackPayload) Kind() Kind     { return KindRollback }

func (LikePayload) payload()         {}
func (PinPayload) payload()          {}
func (FavoritePayload) payload()     {}
func (AddRecipePayload) payload()    {}
func (EditRecipePayload) payload()   {}
func (DeleteRecipePayload) payload() {}
func (CommentPayload) payload()      {}
func (ProfileEditPayload) payload()  {}
func (RollbackPayload) payload()     {}

// decodePayload decodes data into the payload struct for kind.
func decodePayload(kind Kind, data []byte) (Payload, error) {
	var p Payload
	var err error
	switch kind {
	case KindLike:
		p, err = decodeAs[LikePayload](data)
	case KindPin:
		p, err = decodeAs[PinPayload](data)
	case KindFavorite:
		p, err = decodeAs[FavoritePayload](data)
	case KindAddRecipe:
		p, err = decodeAs[AddRecipePayload](data)
	case KindEditRecipe:
		p, err = decodeAs[EditRecipePayload](data)
	case KindDeleteRecipe:
		p, err = decodeAs[DeleteRecipePayload](data)
	case KindComment:
		p, err = decodeAs[CommentPayload](data)
	case KindProfileEdit:
		p, err = decodeAs[ProfileEditPayload](data)
	case KindRollback:
		p, err = decodeAs[RollbackPayload](data)
	default:
		return nil, fmt.Errorf("unknown command kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return p, nil
}

func decodeAs[T Payload](data []byte) (Payload, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}
