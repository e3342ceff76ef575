package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recipeata/internal/ir"
)

func TestPatchFieldsMarksUnsetUndefined(t *testing.T) {
	p := Patch{Title: String("new"), Servings: Int(3)}

	fields, err := p.Fields()
	require.NoError(t, err)

	assert.Equal(t, ir.String("new"), fields["title"])
	assert.Equal(t, ir.Int(3), fields["servings"])
	assert.Equal(t, ir.Undefined{}, fields["description"])
	assert.Equal(t, ir.Undefined{}, fields["ingredients"])

	stripped := ir.StripObject(fields)
	assert.Equal(t, ir.Object{"title": ir.String("new"), "servings": ir.Int(3)}, stripped)
}

func TestPatchFieldsCoverFullPatch(t *testing.T) {
	fields, err := FullPatch(Content{Title: "t"}).Fields()
	require.NoError(t, err)

	assert.NotContains(t, fields, "subImages")
	for k, v := range fields {
		assert.NotEqual(t, ir.Undefined{}, v, "full patch leaves %s unset", k)
	}
}

func TestPatchFieldsKeepsEmptyString(t *testing.T) {
	fields, err := Patch{Advice: String("")}.Fields()
	require.NoError(t, err)

	assert.Equal(t, ir.Object{"advice": ir.String("")}, ir.StripObject(fields))
}

func TestPatchFieldsEmptyList(t *testing.T) {
	fields, err := Patch{Tags: Tags()}.Fields()
	require.NoError(t, err)

	assert.Equal(t, ir.Array{}, fields["tags"])
}

func TestPatchFieldsLists(t *testing.T) {
	fields, err := Patch{Ingredients: Ingredients(Ingredient{Name: "egg", Quantity: "2"})}.Fields()
	require.NoError(t, err)

	assert.Equal(t, ir.Array{
		ir.Object{"name": ir.String("egg"), "quantity": ir.String("2")},
	}, fields["ingredients"])
}

func TestPatchApply(t *testing.T) {
	base := Content{Title: "old", Servings: 2, Tags: []string{"a"}}

	got := Patch{Title: String("new"), Tags: Tags("b")}.Apply(base)

	assert.Equal(t, "new", got.Title)
	assert.Equal(t, 2, got.Servings)
	assert.Equal(t, []string{"b"}, got.Tags)
	assert.Equal(t, []string{"a"}, base.Tags, "input must not be modified")
}

func TestFullPatchRoundTrip(t *testing.T) {
	c := Content{
		Title:       "t",
		Description: "d",
		Ingredients: []Ingredient{{Name: "n", Quantity: "q"}},
		Steps:       []Step{{Description: "s"}},
		Tags:        []string{"x"},
		CookingTime: 10,
		Servings:    1,
	}

	p := FullPatch(c)
	assert.False(t, p.IsZero())
	assert.Equal(t, c, p.Apply(Content{}))
	assert.True(t, Patch{}.IsZero())
}

func TestDocumentRoundTrip(t *testing.T) {
	r := Recipe{ID: "r-1", Content: Content{Title: "カレー", Servings: 4}}

	doc, err := ToDocument(r)
	require.NoError(t, err)
	assert.Equal(t, ir.String("カレー"), doc["title"])
	assert.Equal(t, ir.Array{}, doc["likes"], "nil lists are stored as []")
	_, hasHistory := doc["history"]
	assert.False(t, hasHistory)

	back, err := FromDocument(doc)
	require.NoError(t, err)
	assert.Equal(t, "r-1", back.ID)
	assert.Equal(t, 4, back.Servings)
	assert.NotNil(t, back.Comments)
}
