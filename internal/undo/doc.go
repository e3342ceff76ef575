// Package undo implements the session's undo/redo stack.
//
// A Command records one user operation as a typed Payload. Undo and redo
// effects are not stored on the command; they are looked up by Kind in a
// Dispatcher, so commands stay plain data that can be serialised, traced
// and replayed.
//
// Stack is strictly LIFO. Push clears the redo stack. Undo and Redo run the
// dispatched effect and move the command only when the effect succeeds; a
// failed effect leaves both stacks as they were and returns an
// *EffectError. Push, Undo and Redo are serialised, so a call made while an
// effect is running waits for it.
package undo
