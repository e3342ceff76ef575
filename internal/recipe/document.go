package recipe

import (
	"fmt"

	"github.com/roach88/recipeata/internal/ir"
)

// Normalize replaces nil lists with empty ones so documents never store
// null where a list is expected.
func (r *Recipe) Normalize() {
	if r.Ingredients == nil {
		r.Ingredients = []Ingredient{}
	}
	if r.Steps == nil {
		r.Steps = []Step{}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	if r.SubImages == nil {
		r.SubImages = []SubImage{}
	}
	if r.Likes == nil {
		r.Likes = []Like{}
	}
	if r.Comments == nil {
		r.Comments = []Comment{}
	}
}

// ToDocument converts a recipe into its stored document form.
func ToDocument(r Recipe) (ir.Object, error) {
	r.Normalize()
	obj, err := ir.FromStruct(r)
	if err != nil {
		return nil, fmt.Errorf("recipe %s to document: %w", r.ID, err)
	}
	return obj, nil
}

// FromDocument decodes a stored document.
func FromDocument(obj ir.Object) (Recipe, error) {
	var r Recipe
	if err := ir.ToStruct(obj, &r); err != nil {
		return Recipe{}, fmt.Errorf("document to recipe: %w", err)
	}
	r.Normalize()
	return r, nil
}
