package memoexec

// Run executes the command and blocks until the run settles,
// returning nil on a clean exit. It distinguishes four failures:
// ErrAlreadyCancelled, ErrAborted, *SpawnError and *ExitError.
// None of them is retried here.
//
// With memoization on and a non-nil token, concurrent and repeat
// calls carrying the identical *Token never cause more than one
// underlying execution: the first call to drain the queue does the
// work, every co-token call rides its outcome, and a recorded
// success answers later calls without spawning at all. Requests with
// distinct tokens still execute one at a time, in arrival order.
//
// Without memoization, or without a token, the call executes
// directly; such calls are independent of each other and of the
// queue, and may overlap freely.
func (mc *ManagedCommand) Run(tok *Token) error {
	if tok != nil && tok.Cancelled() {
		logger.Printf("run; %q refused, token already cancelled", mc.command)
		return ErrAlreadyCancelled
	}
	if !mc.memoize || tok == nil {
		return mc.exec(tok, nil)
	}

	st := mc.state
	st.mu.Lock()
	if _, hit := st.completed[tok]; hit {
		st.mu.Unlock()
		logger.Printf("run; %q satisfied from token cache", mc.command)
		return nil
	}
	pr := &pendingRequest{tok: tok, done: make(chan error, 1)}
	st.queue = append(st.queue, pr)
	logger.Printf("run; %q enqueued, depth now %d", mc.command, len(st.queue))
	mc.drainLocked()
	st.mu.Unlock()

	return <-pr.done
}

// drainLocked starts the next queued request unless one is already
// in flight. Callers must hold st.mu.
func (mc *ManagedCommand) drainLocked() {
	st := mc.state
	if st.running || len(st.queue) == 0 {
		return
	}
	head := st.queue[0]
	st.queue = st.queue[1:]
	st.running = true
	go mc.execQueued(head)
}

// execQueued performs one drained execution and settles the queue.
// A success is recorded against the head's token and broadcast to
// every queued co-token request; a failure is broadcast the same way
// (see DESIGN.md). Requests under other tokens stay queued, and the
// drain is re-invoked for them.
func (mc *ManagedCommand) execQueued(head *pendingRequest) {
	err := mc.exec(head.tok, mc.state)

	st := mc.state
	st.mu.Lock()
	st.running = false
	if err == nil {
		st.completed[head.tok] = struct{}{}
	}
	head.done <- err
	kept := st.queue[:0]
	for _, pr := range st.queue {
		if pr.tok == head.tok {
			logger.Printf("drain; %q settling co-token waiter", mc.command)
			pr.done <- err
			continue
		}
		kept = append(kept, pr)
	}
	st.queue = kept
	mc.drainLocked()
	st.mu.Unlock()
}
