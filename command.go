package memoexec

import (
	"sync"

	"github.com/fogfish/opts"
	"github.com/google/uuid"
	"github.com/monopole/memoexec/spawner"
)

// StarterF spawns the given command and returns a handle to it.
// The default implementation is spawner.Start; tests can swap in
// fakes that hand out scriptable handles.
type StarterF func(command string) (spawner.Handle, error)

// ManagedCommand wraps one external shell command as a unit of work
// that can be run, cancelled via a Token, and optionally memoized so
// that repeat runs carrying the same token share a single execution.
//
// A ManagedCommand value is a view; Memoized returns a second view
// onto the same queue and cache state with memoization switched on.
type ManagedCommand struct {
	// id identifies the command to external consumers (e.g. the
	// CommandGroup outcome map); the core logic never branches on it.
	id uuid.UUID

	// command is the shell command, opaque to this package.
	command string

	// memoize is fixed per view. The only way to obtain a memoizing
	// view is Memoized, which never mutates its receiver.
	memoize bool

	// start spawns the command.
	start StarterF

	// state is shared between a command and all its memoized views.
	state *execShared
}

// execShared is the mutable state behind one command and all of its
// views. Every field is guarded by mu.
type execShared struct {
	mu sync.Mutex

	// running gates the serialized (memoized, token-bearing) path:
	// at most one drained execution is in flight while it is true.
	// Direct executions deliberately bypass it; see Run.
	running bool

	// active holds the live handle of the drained execution,
	// non-nil only between its spawn and its cleanup.
	active spawner.Handle

	// queue holds requests awaiting the drained execution, FIFO.
	queue []*pendingRequest

	// completed records tokens this command has already succeeded
	// for. Keyed by pointer identity; grows monotonically.
	completed map[*Token]struct{}
}

// pendingRequest is one queued memoized Run call.
// Its done channel settles exactly once.
type pendingRequest struct {
	tok  *Token
	done chan error
}

var (
	// WithID overrides the generated command identifier.
	WithID = opts.ForName[ManagedCommand, uuid.UUID]("id")

	// WithStarter injects the spawn mechanism.
	WithStarter = opts.ForName[ManagedCommand, StarterF]("start")
)

// WithSpawnParams configures the default spawn mechanism.
func WithSpawnParams(p spawner.Params) opts.Option[ManagedCommand] {
	return opts.Type[ManagedCommand](func(mc *ManagedCommand) error {
		mc.start = func(command string) (spawner.Handle, error) {
			// Validate mutates its receiver, and direct runs may
			// overlap, so each spawn gets its own copy.
			params := p
			return spawner.Start(&params, command)
		}
		return nil
	})
}

// New returns a ManagedCommand for the given shell command with
// memoization off. It panics on a misconfigured option.
func New(command string, options ...opts.Option[ManagedCommand]) *ManagedCommand {
	mc := &ManagedCommand{
		id:      uuid.Must(uuid.NewV7()),
		command: command,
		state: &execShared{
			completed: make(map[*Token]struct{}),
		},
	}
	if err := opts.Apply(mc, options); err != nil {
		panic(err)
	}
	if mc.start == nil {
		mc.start = func(command string) (spawner.Handle, error) {
			return spawner.Start(&spawner.Params{}, command)
		}
	}
	return mc
}

// ID returns the command's opaque identifier.
func (mc *ManagedCommand) ID() uuid.UUID { return mc.id }

// Command returns the shell command string.
func (mc *ManagedCommand) Command() string { return mc.command }

// MemoizationEnabled reports whether this view memoizes.
func (mc *ManagedCommand) MemoizationEnabled() bool { return mc.memoize }

// Memoized returns a view of the command with memoization enabled.
// The receiver is not modified. The view shares the receiver's id,
// command, spawn mechanism, queue and token cache, so a success
// observed through any view satisfies co-token runs through all views.
func (mc *ManagedCommand) Memoized() *ManagedCommand {
	view := *mc
	view.memoize = true
	return &view
}
