package recipe

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RollbackNote is the revision note written by a rollback.
const RollbackNote = "rollback"

// Revision is what a history entry records about an edit: either a
// structured Diff or a free-text Note. It encodes as a JSON object or a
// JSON string respectively.
type Revision struct {
	Diff *Diff
	Note string
}

// DiffRevision wraps a structured diff.
func DiffRevision(d Diff) Revision {
	return Revision{Diff: &d}
}

// NoteRevision wraps a free-text note.
func NoteRevision(note string) Revision {
	return Revision{Note: note}
}

// IsEmpty reports whether the revision carries nothing to show: no note
// and no changed field.
func (r Revision) IsEmpty() bool {
	if r.Note != "" {
		return false
	}
	return r.Diff == nil || r.Diff.IsEmpty()
}

// String renders the revision for logs and text output.
func (r Revision) String() string {
	if r.Note != "" {
		return r.Note
	}
	if r.Diff == nil {
		return "{}"
	}
	b, err := json.Marshal(r.Diff)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// MarshalJSON implements json.Marshaler.
func (r Revision) MarshalJSON() ([]byte, error) {
	if r.Note != "" {
		return json.Marshal(r.Note)
	}
	if r.Diff == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Diff)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Revision) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Revision{}

	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		return nil
	case data[0] == '"':
		return json.Unmarshal(data, &r.Note)
	case data[0] == '{':
		var d Diff
		if err := json.Unmarshal(data, &d); err != nil {
			return fmt.Errorf("decode diff: %w", err)
		}
		r.Diff = &d
		return nil
	default:
		return fmt.Errorf("revision must be an object or a string, got %s", data)
	}
}
