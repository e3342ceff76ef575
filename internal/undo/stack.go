package undo

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/roach88/recipeata/internal/ident"
	"github.com/roach88/recipeata/internal/paginate"
)

// Event describes one completed stack transition.
type Event struct {
	Op      Op
	Command Command
	// Err is non-nil when the effect failed.
	Err error
}

// Observer is notified after every push, undo and redo. Observers run on
// the calling goroutine while the stack is still serialised and must not
// call back into the stack.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

// Stack is the undo/redo stack manager. The zero value is not usable; call
// NewStack.
//
// Thread-safety model:
//   - Push, Undo, Redo: serialised by a single-slot semaphore
//   - read accessors: safe from any goroutine at any time
type Stack struct {
	guard    *semaphore.Weighted
	dispatch Dispatcher
	now      func() time.Time
	ids      ident.Generator
	logger   *slog.Logger

	mu        sync.Mutex
	undo      []Command // newest last
	redo      []Command // newest last
	last      string
	observers []Observer
}

// StackOption configures a Stack.
type StackOption func(*Stack)

// WithClock sets the clock used for CreatedAt.
func WithClock(now func() time.Time) StackOption {
	return func(s *Stack) {
		s.now = now
	}
}

// WithIDGenerator sets the generator for command ids.
func WithIDGenerator(gen ident.Generator) StackOption {
	return func(s *Stack) {
		s.ids = gen
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StackOption {
	return func(s *Stack) {
		s.logger = l
	}
}

// WithObserver registers an observer.
func WithObserver(o Observer) StackOption {
	return func(s *Stack) {
		s.observers = append(s.observers, o)
	}
}

// NewStack creates an empty stack that resolves effects through d.
func NewStack(d Dispatcher, opts ...StackOption) *Stack {
	if d == nil {
		d = Dispatcher{}
	}
	s := &Stack{
		guard:    semaphore.NewWeighted(1),
		dispatch: d,
		now:      time.Now,
		ids:      ident.UUIDv7Generator{},
		logger:   slog.Default(),
		undo:     []Command{},
		redo:     []Command{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddObserver registers o for subsequent transitions.
func (s *Stack) AddObserver(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Push records a completed operation. It stamps the command's ID and
// CreatedAt, clears the redo stack and returns the stored command. It fails
// only if ctx ends while waiting for a running Undo or Redo.
func (s *Stack) Push(ctx context.Context, cmd Command) (Command, error) {
	if err := s.guard.Acquire(ctx, 1); err != nil {
		return Command{}, fmt.Errorf("push: %w", err)
	}
	defer s.guard.Release(1)

	if cmd.Kind == "" && cmd.Payload != nil {
		cmd.Kind = cmd.Payload.Kind()
	}
	cmd.ID = s.ids.Generate()
	cmd.CreatedAt = s.now().UTC()

	s.mu.Lock()
	s.undo = append(s.undo, cmd)
	s.redo = s.redo[:0]
	s.last = cmd.Description
	s.mu.Unlock()

	s.logger.Debug("command pushed", "id", cmd.ID, "kind", cmd.Kind, "description", cmd.Description)
	s.notify(Event{Op: OpPush, Command: cmd})
	return cmd, nil
}

// Undo reverses the most recent command. With nothing to undo it returns
// (Command{}, false, nil). If the effect fails the command stays on the
// undo stack and the error is an *EffectError.
func (s *Stack) Undo(ctx context.Context) (Command, bool, error) {
	return s.transition(ctx, OpUndo)
}

// Redo re-applies the most recently undone command. Symmetric to Undo.
func (s *Stack) Redo(ctx context.Context) (Command, bool, error) {
	return s.transition(ctx, OpRedo)
}

func (s *Stack) transition(ctx context.Context, op Op) (Command, bool, error) {
	if err := s.guard.Acquire(ctx, 1); err != nil {
		return Command{}, false, fmt.Errorf("%s: %w", op, err)
	}
	defer s.guard.Release(1)

	s.mu.Lock()
	from := &s.undo
	if op == OpRedo {
		from = &s.redo
	}
	if len(*from) == 0 {
		s.mu.Unlock()
		return Command{}, false, nil
	}
	cmd := (*from)[len(*from)-1]
	s.mu.Unlock()

	// The command stays on its stack until the effect succeeds, so a
	// failure needs no compensation. Effects are not cancelled once started.
	err := s.run(context.WithoutCancel(ctx), op, cmd)
	if err != nil {
		s.logger.Warn("command effect failed", "op", op, "id", cmd.ID, "kind", cmd.Kind, "error", err)
		s.notify(Event{Op: op, Command: cmd, Err: err})
		return cmd, false, err
	}

	s.mu.Lock()
	if op == OpUndo {
		s.undo = s.undo[:len(s.undo)-1]
		s.redo = append(s.redo, cmd)
	} else {
		s.redo = s.redo[:len(s.redo)-1]
		s.undo = append(s.undo, cmd)
	}
	s.last = cmd.Description
	s.mu.Unlock()

	s.logger.Info("command applied", "op", op, "id", cmd.ID, "kind", cmd.Kind, "description", cmd.Description)
	s.notify(Event{Op: op, Command: cmd})
	return cmd, true, nil
}

func (s *Stack) run(ctx context.Context, op Op, cmd Command) error {
	fn, err := s.dispatch.effect(op, cmd.Kind)
	if err == nil {
		err = fn(ctx, cmd)
	}
	if err != nil {
		return &EffectError{Op: op, Command: cmd, Err: err}
	}
	return nil
}

func (s *Stack) notify(ev Event) {
	s.mu.Lock()
	observers := slices.Clone(s.observers)
	s.mu.Unlock()
	for _, o := range observers {
		o.Observe(ev)
	}
}

// CanUndo reports whether there is a command to undo.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether there is a command to redo.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// LastActionDescription is the description of the command most recently
// pushed, undone or redone.
func (s *Stack) LastActionDescription() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// UndoStack returns a copy of the undo stack, newest last.
func (s *Stack) UndoStack() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.undo)
}

// RedoStack returns a copy of the redo stack, newest last.
func (s *Stack) RedoStack() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.redo)
}

// Page returns one page of the undo stack, newest first.
func (s *Stack) Page(page, perPage int) paginate.Page[Command] {
	items := s.UndoStack()
	slices.Reverse(items)
	return paginate.Slice(items, page, perPage)
}
