// Package ir defines the JSON value model used for stored recipe documents.
//
// Values form a sealed tree (Null, String, Int, Bool, Array, Object) plus
// Undefined, which marks a field a caller left unset in a partial update.
// Undefined never reaches storage: writers call Strip, and MarshalCanonical
// rejects it.
//
// Canonical JSON (RFC 8785 key order, NFC strings, no HTML escaping) is the
// only encoding written to the database, so equal documents are equal bytes.
package ir
