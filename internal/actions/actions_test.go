package actions

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recipeata/internal/history"
	"github.com/roach88/recipeata/internal/ident"
	"github.com/roach88/recipeata/internal/recipe"
	"github.com/roach88/recipeata/internal/store"
	"github.com/roach88/recipeata/internal/testutil"
	"github.com/roach88/recipeata/internal/undo"
)

type fixture struct {
	svc   *Service
	store *store.Store
	stack *undo.Stack
}

var testUser = recipe.User{
	ID:      "u-1",
	Profile: recipe.Profile{Name: "Aki", Store: "Shibuya"},
	Role:    recipe.RoleUser,
}

func setup(t *testing.T) fixture {
	t.Helper()
	clock := testutil.NewDeterministicClock()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"),
		store.WithClock(clock.Now),
		store.WithIDGenerator(ident.NewSequenceGenerator("id")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.UpsertUser(context.Background(), testUser))

	hist := history.New(s, history.WithClock(clock.Now), history.WithLogger(logger))
	svc := New(s, hist, testUser,
		WithLogger(logger),
		WithStackOptions(
			undo.WithClock(clock.Now),
			undo.WithIDGenerator(ident.NewSequenceGenerator("cmd")),
		),
	)
	return fixture{svc: svc, store: s, stack: svc.Stack()}
}

func sampleContent() recipe.Content {
	return recipe.Content{
		Title:       "親子丼",
		Description: "quick lunch",
		Ingredients: []recipe.Ingredient{{Name: "egg", Quantity: "2"}, {Name: "chicken", Quantity: "100g"}},
		Steps:       []recipe.Step{{Description: "simmer"}, {Description: "add egg"}},
		Tags:        []string{"丼"},
		CookingTime: 15,
		Servings:    1,
	}
}

func (f fixture) addRecipe(t *testing.T) recipe.Recipe {
	t.Helper()
	r, err := f.svc.AddRecipe(context.Background(), sampleContent(), nil)
	require.NoError(t, err)
	return r
}

func (f fixture) undo(t *testing.T) undo.Command {
	t.Helper()
	cmd, ok, err := f.stack.Undo(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return cmd
}

func (f fixture) redo(t *testing.T) undo.Command {
	t.Helper()
	cmd, ok, err := f.stack.Redo(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return cmd
}

func (f fixture) exists(t *testing.T, id string) bool {
	t.Helper()
	ok, err := f.store.HasRecipe(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func (f fixture) recipe(t *testing.T, id string) recipe.Recipe {
	t.Helper()
	r, err := f.store.GetRecipe(context.Background(), id)
	require.NoError(t, err)
	return r
}

func TestAddRecipe_UndoRedo(t *testing.T) {
	f := setup(t)
	r := f.addRecipe(t)

	assert.Equal(t, "u-1", r.CreatedByID)
	assert.Equal(t, "Aki", r.CreatedBy.Name)
	assert.Equal(t, `Added recipe "親子丼"`, f.stack.LastActionDescription())

	cmd := f.undo(t)
	assert.Equal(t, undo.KindAddRecipe, cmd.Kind)
	assert.False(t, f.exists(t, r.ID))

	f.redo(t)
	assert.True(t, f.exists(t, r.ID), "redo restores under the same id")
	assert.Equal(t, "親子丼", f.recipe(t, r.ID).Title)
}

func TestAddRecipe_InvalidPushesNothing(t *testing.T) {
	f := setup(t)

	_, err := f.svc.AddRecipe(context.Background(), recipe.Content{}, nil)
	assert.ErrorIs(t, err, recipe.ErrInvalid)
	assert.False(t, f.stack.CanUndo())
}

func TestEditRecipe_UndoRedo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	diff, changed, err := f.svc.EditRecipe(ctx, r.ID, recipe.Patch{
		Title: recipe.String("親子丼 大盛り"),
		Tags:  recipe.Tags("丼", "大盛り"),
	})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, []string{"大盛り"}, diff.TagsAdded)
	assert.Len(t, f.stack.UndoStack(), 2)

	f.undo(t)
	got := f.recipe(t, r.ID)
	assert.Equal(t, "親子丼", got.Title)
	assert.Equal(t, []string{"丼"}, got.Tags)
	assert.Len(t, got.History, 2, "undoing an edit is recorded too")

	f.redo(t)
	got = f.recipe(t, r.ID)
	assert.Equal(t, "親子丼 大盛り", got.Title)
	assert.Equal(t, []string{"丼", "大盛り"}, got.Tags)
}

func TestEditRecipe_UndoKeepsSubImages(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	imgs := []recipe.SubImage{{URL: "http://x/1.jpg", Caption: "c"}}
	r, err := f.svc.AddRecipe(ctx, sampleContent(), imgs)
	require.NoError(t, err)

	_, changed, err := f.svc.EditRecipe(ctx, r.ID, recipe.Patch{Title: recipe.String("new")})
	require.NoError(t, err)
	require.True(t, changed)
	assert.Equal(t, imgs, f.recipe(t, r.ID).SubImages)

	f.undo(t)
	got := f.recipe(t, r.ID)
	assert.Equal(t, "親子丼", got.Title)
	assert.Equal(t, imgs, got.SubImages)

	f.redo(t)
	got = f.recipe(t, r.ID)
	assert.Equal(t, "new", got.Title)
	assert.Equal(t, imgs, got.SubImages)
}

func TestEditRecipe_NoChangeNoCommand(t *testing.T) {
	f := setup(t)
	r := f.addRecipe(t)

	_, changed, err := f.svc.EditRecipe(context.Background(), r.ID, recipe.FullPatch(r.Content))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, f.stack.UndoStack(), 1)
	assert.Empty(t, f.recipe(t, r.ID).History)
}

func TestDeleteRecipe_UndoRestoresEverything(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	_, err := f.svc.Like(ctx, r.ID)
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, r.ID, "美味しい", "")
	require.NoError(t, err)
	_, _, err = f.svc.EditRecipe(ctx, r.ID, recipe.Patch{Servings: recipe.Int(2)})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteRecipe(ctx, r.ID))
	assert.False(t, f.exists(t, r.ID))
	assert.Equal(t, `Deleted recipe "親子丼"`, f.stack.LastActionDescription())

	f.undo(t)
	got := f.recipe(t, r.ID)
	assert.Equal(t, 1, got.LikeCount())
	assert.Equal(t, 1, got.CommentCount())
	assert.Len(t, got.History, 1)

	f.redo(t)
	assert.False(t, f.exists(t, r.ID))

	err = f.svc.DeleteRecipe(ctx, "missing")
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestLike_UndoRedo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	liked, err := f.svc.Like(ctx, r.ID)
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, 1, f.recipe(t, r.ID).LikeCount())

	f.undo(t)
	assert.Equal(t, 0, f.recipe(t, r.ID).LikeCount())
	f.redo(t)
	assert.Equal(t, 1, f.recipe(t, r.ID).LikeCount())

	// unlike is recorded as its own command
	liked, err = f.svc.Like(ctx, r.ID)
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, `Unliked "親子丼"`, f.stack.LastActionDescription())

	f.undo(t)
	assert.True(t, f.recipe(t, r.ID).LikedBy("u-1"))
}

func TestComment_UndoRedo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	top, err := f.svc.AddComment(ctx, r.ID, "  とても美味しかったです、また作ります！ありがとう  ", "")
	require.NoError(t, err)
	assert.Equal(t, "とても美味しかったです、また作ります！ありがとう", top.Text)
	assert.Equal(t, "Added comment: とても美味しかったです、また作ります！あ...", f.stack.LastActionDescription())

	reply, err := f.svc.AddComment(ctx, r.ID, "thanks", top.ID)
	require.NoError(t, err)

	f.undo(t)
	got := f.recipe(t, r.ID)
	_, found := got.FindComment(reply.ID)
	assert.False(t, found, "undo removes the reply by id")
	assert.Equal(t, 1, got.CommentCount())

	f.redo(t)
	got = f.recipe(t, r.ID)
	_, found = got.FindComment(reply.ID)
	assert.True(t, found, "redo restores the same comment id")

	_, err = f.svc.AddComment(ctx, r.ID, "   ", "")
	assert.ErrorIs(t, err, recipe.ErrInvalid)
}

func TestDeleteComment_UndoRestoresReplies(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	top, err := f.svc.AddComment(ctx, r.ID, "question?", "")
	require.NoError(t, err)
	reply, err := f.svc.AddComment(ctx, r.ID, "answer", top.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteComment(ctx, r.ID, top.ID))
	assert.Equal(t, 0, f.recipe(t, r.ID).CommentCount())

	f.undo(t)
	got := f.recipe(t, r.ID)
	assert.Equal(t, 2, got.CommentCount())
	restored, found := got.FindComment(reply.ID)
	require.True(t, found)
	assert.Equal(t, "answer", restored.Text)

	f.redo(t)
	assert.Equal(t, 0, f.recipe(t, r.ID).CommentCount())

	err = f.svc.DeleteComment(ctx, r.ID, "nope")
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestPinAndFavorite_UndoRedo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	user := func() recipe.User {
		u, err := f.store.GetUser(ctx, "u-1")
		require.NoError(t, err)
		return u
	}

	require.NoError(t, f.svc.Pin(ctx, r.ID))
	require.NoError(t, f.svc.Favorite(ctx, r.ID))
	assert.Equal(t, []string{r.ID}, user().Pins)
	assert.Equal(t, []string{r.ID}, user().Favorites)

	f.undo(t)
	assert.Empty(t, user().Favorites)
	f.undo(t)
	assert.Empty(t, user().Pins)

	f.redo(t)
	assert.Equal(t, []string{r.ID}, user().Pins)

	require.NoError(t, f.svc.Unpin(ctx, r.ID))
	assert.Empty(t, user().Pins)
	assert.False(t, f.stack.CanRedo())
	f.undo(t)
	assert.Equal(t, []string{r.ID}, user().Pins)

	require.NoError(t, f.svc.Favorite(ctx, r.ID))
	require.NoError(t, f.svc.Unfavorite(ctx, r.ID))
	f.undo(t)
	assert.Equal(t, []string{r.ID}, user().Favorites)
}

func TestEditProfile_UndoRedo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	u, err := f.svc.EditProfile(ctx, recipe.Profile{Name: "Aki T", Store: "Ginza"})
	require.NoError(t, err)
	assert.Equal(t, "Ginza", u.Store)
	assert.Equal(t, "Aki T", f.svc.User().Name)

	f.undo(t)
	stored, err := f.store.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Shibuya", stored.Store)
	assert.Equal(t, "Aki", f.svc.User().Name)

	f.redo(t)
	assert.Equal(t, "Ginza", f.svc.User().Store)
}

func TestRollback_UndoRedo(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	_, _, err := f.svc.EditRecipe(ctx, r.ID, recipe.Patch{Title: recipe.String("v2")})
	require.NoError(t, err)

	rolled, err := f.svc.Rollback(ctx, r.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "親子丼", rolled.Title)
	assert.Equal(t, recipe.RollbackNote, rolled.History[0].Diff.Note)

	cmd := f.undo(t)
	assert.Equal(t, undo.KindRollback, cmd.Kind)
	assert.Equal(t, "v2", f.recipe(t, r.ID).Title)

	f.redo(t)
	got := f.recipe(t, r.ID)
	assert.Equal(t, "親子丼", got.Title)
	assert.Equal(t, recipe.RollbackNote, got.History[0].Diff.Note)

	_, err = f.svc.Rollback(ctx, r.ID, 42)
	assert.ErrorIs(t, err, history.ErrNoEntry)
}

func TestUndo_FailedEffectKeepsCommand(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	r := f.addRecipe(t)

	_, err := f.svc.Like(ctx, r.ID)
	require.NoError(t, err)

	// the recipe disappears behind the stack's back
	require.NoError(t, f.store.DeleteRecipe(ctx, r.ID))

	_, ok, err := f.stack.Undo(ctx)
	assert.False(t, ok)
	assert.True(t, undo.IsEffectError(err))
	assert.ErrorIs(t, err, recipe.ErrNotFound)
	assert.Len(t, f.stack.UndoStack(), 2)
}

func TestHandle_RejectsWrongPayload(t *testing.T) {
	f := setup(t)
	h := f.svc.Dispatcher()[undo.KindLike]

	err := h.Undo(context.Background(), undo.Command{Kind: undo.KindLike, Payload: undo.PinPayload{}})
	assert.Error(t, err)
}

func TestDispatcher_CoversEveryKind(t *testing.T) {
	d := setup(t).svc.Dispatcher()
	for _, k := range undo.Kinds() {
		h, ok := d[k]
		require.True(t, ok, k)
		assert.NotNil(t, h.Undo, k)
		assert.NotNil(t, h.Redo, k)
	}
}
