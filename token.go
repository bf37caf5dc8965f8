package memoexec

import "sync"

// Token is a one-shot cancellation signal, typically shared by every
// command in a batch. The caller owns the Token; a ManagedCommand
// only ever reads it.
//
// Memoization is keyed by token identity (the pointer), so the same
// *Token value must be passed to every Run call that should share an
// outcome.
type Token struct {
	once sync.Once
	done chan struct{}
}

// NewToken returns a fresh, unfired Token.
func NewToken() *Token {
	return &Token{done: make(chan struct{})}
}

// Cancel fires the token. Once fired it stays fired;
// calls after the first are no-ops.
func (t *Token) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// Cancelled reports whether Cancel has been called.
func (t *Token) Cancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that closes when the token fires.
// Select on it to observe cancellation while work is outstanding.
func (t *Token) Done() <-chan struct{} {
	return t.done
}
