// Package store provides SQLite-backed storage for recipes and users.
//
// Recipes are stored as canonical JSON documents (see package ir), one row
// per recipe. A recipe's revision history lives inside its document, so a
// field update and its history entry are always written by a single UPDATE
// inside one transaction.
//
// # Conventions
//
//   - Writes strip ir.Undefined values before encoding; null and "" survive
//   - Every document is validated against the recipe schema before it is
//     written; invalid documents are rejected with recipe.ErrInvalid
//   - Lookups of unknown ids return errors matching recipe.ErrNotFound
//   - List reads return empty slices, never nil
//   - Like, comment, favorite and pin operations are idempotent, so they can
//     serve as undo/redo inverses
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait on lock contention
//   - foreign_keys=ON
//   - PRAGMA user_version tracks schema migrations
package store
