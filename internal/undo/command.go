package undo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Command is one entry on the undo or redo stack.
//
// ID and CreatedAt are assigned by Stack.Push.
type Command struct {
	ID          string
	Kind        Kind
	Payload     Payload
	Description string
	CreatedAt   time.Time
}

// NewCommand builds a command for p. The kind is taken from the payload.
func NewCommand(p Payload, description string) Command {
	return Command{Kind: p.Kind(), Payload: p, Description: description}
}

type commandJSON struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
	Payload     json.RawMessage `json:"payload"`
}

// MarshalJSON implements json.Marshaler.
func (c Command) MarshalJSON() ([]byte, error) {
	payload := json.RawMessage("null")
	if c.Payload != nil {
		data, err := json.Marshal(c.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", c.Kind, err)
		}
		payload = data
	}
	return json.Marshal(commandJSON{
		ID:          c.ID,
		Kind:        c.Kind,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		Payload:     payload,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The payload is decoded into
// the struct selected by kind.
func (c *Command) UnmarshalJSON(data []byte) error {
	var raw commandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Command{
		ID:          raw.ID,
		Kind:        raw.Kind,
		Description: raw.Description,
		CreatedAt:   raw.CreatedAt,
	}
	if len(raw.Payload) == 0 || bytes.Equal(raw.Payload, []byte("null")) {
		return nil
	}
	p, err := decodePayload(raw.Kind, raw.Payload)
	if err != nil {
		return err
	}
	c.Payload = p
	return nil
}
