package memoexec

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/monopole/memoexec/spawner"
)

const (
	timeOutLong = 2 * time.Second
	// timeOutTiny paces polling loops.
	timeOutTiny = 2 * time.Millisecond
)

// fakeHandle is a scriptable spawn handle; tests decide when and how
// it terminates.
type fakeHandle struct {
	done     chan spawner.Result
	killOnce sync.Once
	mu       sync.Mutex
	killed   bool
}

func newFakeHandle() *fakeHandle {
	return &fakeHandle{done: make(chan spawner.Result, 1)}
}

func (h *fakeHandle) Done() <-chan spawner.Result { return h.done }

func (h *fakeHandle) Kill() {
	h.killOnce.Do(func() {
		h.mu.Lock()
		h.killed = true
		h.mu.Unlock()
	})
}

func (h *fakeHandle) wasKilled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.killed
}

func (h *fakeHandle) exit(code int) {
	h.done <- spawner.Result{Code: code}
}

// fakeStarter hands out fakeHandles, remembering each one and how
// many spawns happened. When autoExit is set, every handle settles
// with it immediately.
type fakeStarter struct {
	mu       sync.Mutex
	handles  []*fakeHandle
	autoExit *spawner.Result
	startErr error
}

func (s *fakeStarter) start(_ string) (spawner.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return nil, s.startErr
	}
	h := newFakeHandle()
	if s.autoExit != nil {
		h.done <- *s.autoExit
	}
	s.handles = append(s.handles, h)
	return h, nil
}

func (s *fakeStarter) spawnCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.handles)
}

// awaitHandle blocks until the i-th (zero based) spawn has happened
// and returns its handle.
func (s *fakeStarter) awaitHandle(t *testing.T, i int) *fakeHandle {
	t.Helper()
	require.Eventually(t, func() bool {
		return s.spawnCount() > i
	}, timeOutLong, timeOutTiny, "spawn #%d never happened", i)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles[i]
}

func newTestCommand(s *fakeStarter) *ManagedCommand {
	return New("echo "+fmt.Sprint(time.Now().UnixNano()),
		WithStarter(s.start))
}

func queueDepth(mc *ManagedCommand) int {
	mc.state.mu.Lock()
	defer mc.state.mu.Unlock()
	return len(mc.state.queue)
}

func activeEmpty(mc *ManagedCommand) bool {
	mc.state.mu.Lock()
	defer mc.state.mu.Unlock()
	return mc.state.active == nil && !mc.state.running
}

// awaitQueueDepth blocks until the command's pending queue reaches
// the given depth.
func awaitQueueDepth(t *testing.T, mc *ManagedCommand, depth int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return queueDepth(mc) == depth
	}, timeOutLong, timeOutTiny, "queue never reached depth %d", depth)
}
