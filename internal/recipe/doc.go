// Package recipe defines recipe documents and the pure operations over
// them: the revision diff engine, partial-update patches, CUE schema
// validation, search and pagination.
package recipe
