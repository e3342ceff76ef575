package recipe

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/roach88/recipeata/internal/ir"
)

// Patch is a partial update of a recipe's content. Nil fields are left
// unchanged by the write.
type Patch struct {
	Title        *string       `json:"title,omitempty"`
	Description  *string       `json:"description,omitempty"`
	MainImageURL *string       `json:"mainImageUrl,omitempty"`
	Ingredients  *[]Ingredient `json:"ingredients,omitempty"`
	Steps        *[]Step       `json:"steps,omitempty"`
	Advice       *string       `json:"advice,omitempty"`
	Tags         *[]string     `json:"tags,omitempty"`
	CookingTime  *int          `json:"cookingTime,omitempty"`
	Servings     *int          `json:"servings,omitempty"`
}

// FullPatch returns a patch that sets every content field to c.
func FullPatch(c Content) Patch {
	c = c.Clone()
	return Patch{
		Title:        &c.Title,
		Description:  &c.Description,
		MainImageURL: &c.MainImageURL,
		Ingredients:  &c.Ingredients,
		Steps:        &c.Steps,
		Advice:       &c.Advice,
		Tags:         &c.Tags,
		CookingTime:  &c.CookingTime,
		Servings:     &c.Servings,
	}
}

// IsZero reports whether the patch sets nothing.
func (p Patch) IsZero() bool {
	return p == Patch{}
}

// Apply returns c with the patch's set fields replaced.
func (p Patch) Apply(c Content) Content {
	out := c.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.MainImageURL != nil {
		out.MainImageURL = *p.MainImageURL
	}
	if p.Ingredients != nil {
		out.Ingredients = slices.Clone(*p.Ingredients)
	}
	if p.Steps != nil {
		out.Steps = slices.Clone(*p.Steps)
	}
	if p.Advice != nil {
		out.Advice = *p.Advice
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	if p.CookingTime != nil {
		out.CookingTime = *p.CookingTime
	}
	if p.Servings != nil {
		out.Servings = *p.Servings
	}
	return out
}

// Fields converts the patch into a document update. Every content key is
// present; unset fields hold ir.Undefined so the store can strip them.
// Sub-images are not content and are never part of an edit.
func (p Patch) Fields() (ir.Object, error) {
	obj := ir.Object{
		"title":        stringField(p.Title),
		"description":  stringField(p.Description),
		"mainImageUrl": stringField(p.MainImageURL),
		"advice":       stringField(p.Advice),
		"cookingTime":  intField(p.CookingTime),
		"servings":     intField(p.Servings),
	}

	lists := []struct {
		key string
		set bool
		val any
	}{
		{"ingredients", p.Ingredients != nil, derefOrNil(p.Ingredients)},
		{"steps", p.Steps != nil, derefOrNil(p.Steps)},
		{"tags", p.Tags != nil, derefOrNil(p.Tags)},
	}
	for _, l := range lists {
		if !l.set {
			obj[l.key] = ir.Undefined{}
			continue
		}
		v, err := listValue(l.val)
		if err != nil {
			return nil, fmt.Errorf("patch %s: %w", l.key, err)
		}
		obj[l.key] = v
	}
	return obj, nil
}

func stringField(s *string) ir.Value {
	if s == nil {
		return ir.Undefined{}
	}
	return ir.String(*s)
}

func intField(n *int) ir.Value {
	if n == nil {
		return ir.Undefined{}
	}
	return ir.Int(*n)
}

func derefOrNil[T any](p *[]T) any {
	if p == nil {
		return nil
	}
	return *p
}

// listValue encodes a slice as an ir.Array. A nil slice becomes [] so a
// stored list never turns into null.
func listValue(v any) (ir.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	val, err := ir.Decode(data)
	if err != nil {
		return nil, err
	}
	if _, ok := val.(ir.Null); ok {
		return ir.Array{}, nil
	}
	return val, nil
}

// String is a helper for building patches.
func String(s string) *string { return &s }

// Int is a helper for building patches.
func Int(n int) *int { return &n }

// Ingredients is a helper for building patches.
func Ingredients(list ...Ingredient) *[]Ingredient { return &list }

// Steps is a helper for building patches.
func Steps(list ...Step) *[]Step { return &list }

// Tags is a helper for building patches.
func Tags(list ...string) *[]string { return &list }
