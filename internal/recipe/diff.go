package recipe

import (
	"bytes"
	"slices"

	"github.com/roach88/recipeata/internal/ir"
)

// Change is a before/after pair for a single field.
type Change[T comparable] struct {
	Before T `json:"before"`
	After  T `json:"after"`
}

// StepImageChange records a step photo swapped at the same position.
type StepImageChange struct {
	Index  int    `json:"index"`
	Before string `json:"before"`
	After  string `json:"after"`
}

// Diff is the structured delta between two versions of a recipe's content.
// Only changed fields are set; an unchanged recipe yields the zero Diff,
// which encodes as {}.
type Diff struct {
	Title              *Change[string]   `json:"title,omitempty"`
	Description        *Change[string]   `json:"description,omitempty"`
	MainImageURL       *Change[string]   `json:"mainImageUrl,omitempty"`
	Advice             *Change[string]   `json:"advice,omitempty"`
	IngredientsAdded   []Ingredient      `json:"ingredientsAdded,omitempty"`
	IngredientsRemoved []Ingredient      `json:"ingredientsRemoved,omitempty"`
	StepsAdded         []Step            `json:"stepsAdded,omitempty"`
	StepsRemoved       []Step            `json:"stepsRemoved,omitempty"`
	StepImages         []StepImageChange `json:"stepImages,omitempty"`
	TagsAdded          []string          `json:"tagsAdded,omitempty"`
	TagsRemoved        []string          `json:"tagsRemoved,omitempty"`
	CookingTime        *Change[int]      `json:"cookingTime,omitempty"`
	Servings           *Change[int]      `json:"servings,omitempty"`
}

// IsEmpty reports whether no field changed.
func (d Diff) IsEmpty() bool {
	return d.Title == nil &&
		d.Description == nil &&
		d.MainImageURL == nil &&
		d.Advice == nil &&
		len(d.IngredientsAdded) == 0 &&
		len(d.IngredientsRemoved) == 0 &&
		len(d.StepsAdded) == 0 &&
		len(d.StepsRemoved) == 0 &&
		len(d.StepImages) == 0 &&
		len(d.TagsAdded) == 0 &&
		len(d.TagsRemoved) == 0 &&
		d.CookingTime == nil &&
		d.Servings == nil
}

// GenerateDiff compares two versions of a recipe's content. It is pure.
//
// Scalar strings follow the empty-equality rule: absent, null and "" all
// decode to the empty string, so they compare equal to each other and a
// change is recorded only when the two sides differ.
func GenerateDiff(before, after Content) Diff {
	var d Diff

	d.Title = diffString(before.Title, after.Title)
	d.Description = diffString(before.Description, after.Description)
	d.MainImageURL = diffString(before.MainImageURL, after.MainImageURL)
	d.Advice = diffString(before.Advice, after.Advice)

	if !sameIngredients(before.Ingredients, after.Ingredients) {
		d.IngredientsAdded = missingFrom(after.Ingredients, before.Ingredients)
		d.IngredientsRemoved = missingFrom(before.Ingredients, after.Ingredients)
	}

	d.StepsAdded = missingFrom(after.Steps, before.Steps)
	d.StepsRemoved = missingFrom(before.Steps, after.Steps)
	d.StepImages = diffStepImages(before.Steps, after.Steps)

	d.TagsAdded = missingFrom(after.Tags, before.Tags)
	d.TagsRemoved = missingFrom(before.Tags, after.Tags)

	d.CookingTime = diffInt(before.CookingTime, after.CookingTime)
	d.Servings = diffInt(before.Servings, after.Servings)

	return d
}

func diffString(before, after string) *Change[string] {
	if before == after {
		return nil
	}
	return &Change[string]{Before: before, After: after}
}

func diffInt(before, after int) *Change[int] {
	if before == after {
		return nil
	}
	return &Change[int]{Before: before, After: after}
}

// sameIngredients compares the canonical encodings of both lists.
func sameIngredients(a, b []Ingredient) bool {
	return bytes.Equal(ingredientBytes(a), ingredientBytes(b))
}

func ingredientBytes(list []Ingredient) []byte {
	arr := make(ir.Array, len(list))
	for i, ing := range list {
		arr[i] = ir.Object{
			"name":     ir.String(ing.Name),
			"quantity": ir.String(ing.Quantity),
		}
	}
	return ir.MustMarshalCanonical(arr)
}

// missingFrom returns the items of src absent from other, in src order.
// Returns nil when nothing is missing.
func missingFrom[T comparable](src, other []T) []T {
	var out []T
	for _, item := range src {
		if !slices.Contains(other, item) {
			out = append(out, item)
		}
	}
	return out
}

func diffStepImages(before, after []Step) []StepImageChange {
	var out []StepImageChange
	n := min(len(before), len(after))
	for i := 0; i < n; i++ {
		if before[i].ImageURL != after[i].ImageURL {
			out = append(out, StepImageChange{
				Index:  i,
				Before: before[i].ImageURL,
				After:  after[i].ImageURL,
			})
		}
	}
	return out
}
