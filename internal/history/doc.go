// Package history records recipe revisions.
//
// Every content edit goes through a Service, which computes the structured
// diff between the stored recipe and the edited content, snapshots the
// recipe as it was before the edit, and writes the field update and the new
// history entry in a single repository call. History is capped; the oldest
// entries are discarded silently.
//
// Rollback restores the editable content of an earlier snapshot and is
// itself recorded, with the revision note "rollback".
package history
