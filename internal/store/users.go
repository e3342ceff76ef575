package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/roach88/recipeata/internal/recipe"
)

// UpsertUser creates or replaces a user record.
func (s *Store) UpsertUser(ctx context.Context, u recipe.User) error {
	if u.ID == "" {
		return fmt.Errorf("write user: empty id")
	}
	if u.Role == "" {
		u.Role = recipe.RoleUser
	}
	favorites, err := marshalIDs(u.Favorites)
	if err != nil {
		return fmt.Errorf("write user %s: %w", u.ID, err)
	}
	pins, err := marshalIDs(u.Pins)
	if err != nil {
		return fmt.Errorf("write user %s: %w", u.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, store, photo_url, role, favorites, pins)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			store = excluded.store,
			photo_url = excluded.photo_url,
			role = excluded.role,
			favorites = excluded.favorites,
			pins = excluded.pins
	`, u.ID, u.Name, u.Store, u.PhotoURL, u.Role, favorites, pins)
	if err != nil {
		return fmt.Errorf("write user %s: %w", u.ID, err)
	}
	return nil
}

// GetUser returns a user. Returns an error matching recipe.ErrNotFound if
// the user does not exist.
func (s *Store) GetUser(ctx context.Context, id string) (recipe.User, error) {
	return getUser(ctx, s.db, id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getUser(ctx context.Context, q queryRower, id string) (recipe.User, error) {
	var u recipe.User
	var favorites, pins string
	err := q.QueryRowContext(ctx, `
		SELECT id, name, store, photo_url, role, favorites, pins
		FROM users WHERE id = ?
	`, id).Scan(&u.ID, &u.Name, &u.Store, &u.PhotoURL, &u.Role, &favorites, &pins)
	if errors.Is(err, sql.ErrNoRows) {
		return recipe.User{}, fmt.Errorf("read user %s: %w", id, recipe.ErrNotFound)
	}
	if err != nil {
		return recipe.User{}, fmt.Errorf("read user %s: %w", id, err)
	}

	if u.Favorites, err = unmarshalIDs(favorites); err != nil {
		return recipe.User{}, fmt.Errorf("read user %s: %w", id, err)
	}
	if u.Pins, err = unmarshalIDs(pins); err != nil {
		return recipe.User{}, fmt.Errorf("read user %s: %w", id, err)
	}
	return u, nil
}

// UpdateProfile replaces a user's name, store and photo. Returns the
// updated user.
func (s *Store) UpdateProfile(ctx context.Context, id string, p recipe.Profile) (recipe.User, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users SET name = ?, store = ?, photo_url = ? WHERE id = ?
	`, p.Name, p.Store, p.PhotoURL, id)
	if err != nil {
		return recipe.User{}, fmt.Errorf("write user %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return recipe.User{}, fmt.Errorf("write user %s: %w", id, err)
	}
	if n == 0 {
		return recipe.User{}, fmt.Errorf("write user %s: %w", id, recipe.ErrNotFound)
	}
	return s.GetUser(ctx, id)
}

// AddFavorite adds recipeID to the user's favorites. Idempotent.
func (s *Store) AddFavorite(ctx context.Context, userID, recipeID string) ([]string, error) {
	return s.updateIDList(ctx, userID, "favorites", func(ids []string) []string {
		return addID(ids, recipeID)
	})
}

// RemoveFavorite removes recipeID from the user's favorites. Idempotent.
func (s *Store) RemoveFavorite(ctx context.Context, userID, recipeID string) ([]string, error) {
	return s.updateIDList(ctx, userID, "favorites", func(ids []string) []string {
		return removeID(ids, recipeID)
	})
}

// AddPin pins recipeID for the user. Idempotent.
func (s *Store) AddPin(ctx context.Context, userID, recipeID string) ([]string, error) {
	return s.updateIDList(ctx, userID, "pins", func(ids []string) []string {
		return addID(ids, recipeID)
	})
}

// RemovePin unpins recipeID for the user. Idempotent.
func (s *Store) RemovePin(ctx context.Context, userID, recipeID string) ([]string, error) {
	return s.updateIDList(ctx, userID, "pins", func(ids []string) []string {
		return removeID(ids, recipeID)
	})
}

// RemoveAllPins clears the user's pins and returns the ids that were pinned.
func (s *Store) RemoveAllPins(ctx context.Context, userID string) ([]string, error) {
	var removed []string
	_, err := s.updateIDList(ctx, userID, "pins", func(ids []string) []string {
		removed = ids
		return []string{}
	})
	if err != nil {
		return nil, err
	}
	if removed == nil {
		removed = []string{}
	}
	return removed, nil
}

// updateIDList rewrites one JSON id column inside a transaction. A missing
// user row is created first, the way a merge write creates the document.
func (s *Store) updateIDList(ctx context.Context, userID, column string, fn func([]string) []string) ([]string, error) {
	if column != "favorites" && column != "pins" {
		return nil, fmt.Errorf("write user %s: unknown list %q", userID, column)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("write user %s: begin: %w", userID, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO users (id) VALUES (?) ON CONFLICT(id) DO NOTHING`, userID); err != nil {
		return nil, fmt.Errorf("write user %s: %w", userID, err)
	}

	u, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	current := u.Favorites
	if column == "pins" {
		current = u.Pins
	}
	next := fn(slices.Clone(current))

	data, err := marshalIDs(next)
	if err != nil {
		return nil, fmt.Errorf("write user %s: %w", userID, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`UPDATE users SET %s = ? WHERE id = ?`, column), data, userID); err != nil {
		return nil, fmt.Errorf("write user %s: %w", userID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("write user %s: commit: %w", userID, err)
	}
	return next, nil
}

func addID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	out := slices.DeleteFunc(ids, func(s string) bool { return s == id })
	if out == nil {
		return []string{}
	}
	return out
}
