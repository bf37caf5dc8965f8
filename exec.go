package memoexec

import "github.com/monopole/memoexec/spawner"

// exec is a single execution attempt: spawn, observe one terminal
// event, clean up. The terminal events are mutually exclusive -
// token fired, spawn/runtime error, or process exit - and cleanup
// runs exactly once on every path before the result settles.
//
// A non-nil st marks the serialized path; the live handle is parked
// in st.active for the duration so the slot invariant holds there.
// Direct calls pass nil and keep their handle to themselves.
func (mc *ManagedCommand) exec(tok *Token, st *execShared) error {
	logger.Printf("exec; spawning %q", mc.command)
	h, err := mc.start(mc.command)
	if err != nil {
		logger.Printf("exec; spawn of %q failed: %s", mc.command, err.Error())
		return &SpawnError{Err: err}
	}
	if st != nil {
		st.mu.Lock()
		st.active = h
		st.mu.Unlock()
	}

	// Kill is idempotent and a no-op on an exited process, so
	// cleanup is safe on the natural-exit path too.
	cleanup := func() {
		h.Kill()
		if st != nil {
			st.mu.Lock()
			st.active = nil
			st.mu.Unlock()
		}
	}

	// A nil token yields a nil channel, which never fires.
	var cancelled <-chan struct{}
	if tok != nil {
		cancelled = tok.Done()
	}

	select {
	case <-cancelled:
		cleanup()
		logger.Printf("exec; %q aborted by token", mc.command)
		return ErrAborted
	case res := <-h.Done():
		cleanup()
		return resultErr(res)
	}
}

// resultErr maps a spawner terminal event to this package's
// error kinds. Exit code zero is the only success.
func resultErr(res spawner.Result) error {
	if res.Err != nil {
		return &SpawnError{Err: res.Err}
	}
	if res.Code != 0 {
		return &ExitError{Code: res.Code}
	}
	return nil
}
