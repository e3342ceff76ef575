package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recipeata/internal/recipe"
)

func TestUsers_UpsertAndGet(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	u := recipe.User{ID: "u-1", Profile: recipe.Profile{Name: "Aki", Store: "Shibuya"}}
	require.NoError(t, s.UpsertUser(ctx, u))

	got, err := s.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Aki", got.Name)
	assert.Equal(t, recipe.RoleUser, got.Role)
	assert.Equal(t, []string{}, got.Favorites)

	_, err = s.GetUser(ctx, "missing")
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestUsers_UpdateProfile(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, recipe.User{ID: "u-1", Profile: recipe.Profile{Name: "Aki"}}))

	got, err := s.UpdateProfile(ctx, "u-1", recipe.Profile{Name: "Aki T", Store: "Ginza"})
	require.NoError(t, err)
	assert.Equal(t, "Aki T", got.Name)
	assert.Equal(t, "Ginza", got.Store)

	_, err = s.UpdateProfile(ctx, "missing", recipe.Profile{})
	assert.ErrorIs(t, err, recipe.ErrNotFound)
}

func TestUsers_FavoritesIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	favs, err := s.AddFavorite(ctx, "u-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1"}, favs)

	favs, err = s.AddFavorite(ctx, "u-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1"}, favs)

	favs, err = s.RemoveFavorite(ctx, "u-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, favs)

	favs, err = s.RemoveFavorite(ctx, "u-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{}, favs)
}

func TestUsers_Pins(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.AddPin(ctx, "u-1", "r-1")
	require.NoError(t, err)
	pins, err := s.AddPin(ctx, "u-1", "r-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1", "r-2"}, pins)

	pins, err = s.RemovePin(ctx, "u-1", "r-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-2"}, pins)

	removed, err := s.RemoveAllPins(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"r-2"}, removed)

	u, err := s.GetUser(ctx, "u-1")
	require.NoError(t, err)
	assert.Empty(t, u.Pins)
}

func TestMarshalIDsRoundTrip(t *testing.T) {
	data, err := marshalIDs([]string{"b", "a"})
	require.NoError(t, err)
	assert.Equal(t, `["b","a"]`, data)

	ids, err := unmarshalIDs(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ids)

	ids, err = unmarshalIDs("")
	require.NoError(t, err)
	assert.Equal(t, []string{}, ids)

	_, err = unmarshalIDs(`{"a":1}`)
	assert.Error(t, err)
}
