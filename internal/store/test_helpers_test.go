package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/recipeata/internal/ident"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/testutil"
)

// createTestStore creates a new file-backed store with a deterministic
// clock and sequential ids.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path,
		WithClock(testutil.NewDeterministicClock().Now),
		WithIDGenerator(ident.NewSequenceGenerator("id")),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRecipe returns a valid recipe ready for AddRecipe.
func createTestRecipe(title string) recipe.Recipe {
	return recipe.Recipe{
		Content: recipe.Content{
			Title:       title,
			Description: "test recipe",
			Ingredients: []recipe.Ingredient{{Name: "salt", Quantity: "1g"}},
			Steps:       []recipe.Step{{Description: "mix"}},
			Tags:        []string{"test"},
			CookingTime: 10,
			Servings:    2,
		},
		CreatedByID: "u-1",
		CreatedBy:   recipe.Author{Name: "Aki", Store: "Shibuya"},
	}
}
