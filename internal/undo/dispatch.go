package undo

import (
	"context"
	"fmt"
)

// Effect applies one direction of a command.
type Effect func(ctx context.Context, cmd Command) error

// Handler is the pair of effects for one kind. Undo and Redo must be
// inverses of each other.
type Handler struct {
	Undo Effect
	Redo Effect
}

// Dispatcher maps command kinds to their handlers.
type Dispatcher map[Kind]Handler

// Register sets the handler for kind, replacing any previous one.
func (d Dispatcher) Register(kind Kind, h Handler) {
	d[kind] = h
}

func (d Dispatcher) effect(op Op, kind Kind) (Effect, error) {
	h, ok := d[kind]
	if !ok {
		return nil, fmt.Errorf("kind %q: %w", kind, ErrNoHandler)
	}
	var fn Effect
	switch op {
	case OpUndo:
		fn = h.Undo
	case OpRedo:
		fn = h.Redo
	}
	if fn == nil {
		return nil, fmt.Errorf("kind %q %s: %w", kind, op, ErrNoHandler)
	}
	return fn, nil
}
