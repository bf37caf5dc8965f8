package memoexec

import (
	"fmt"

	"github.com/alphadose/haxmap"
	"github.com/google/uuid"
)

// CommandGroup runs an ordered collection of ManagedCommands as one
// batch. It fans Run out to every member concurrently and fails as
// soon as any member fails or the shared token is cancelled.
type CommandGroup struct {
	id      uuid.UUID
	members []*ManagedCommand

	// outcomes records the latest settled outcome per member id.
	// Members settle from their own goroutines, hence the
	// concurrent map.
	outcomes *haxmap.Map[string, error]
}

// NewGroup returns a CommandGroup over the given members.
// More can be added with Add before RunAll is called.
func NewGroup(members ...*ManagedCommand) *CommandGroup {
	return &CommandGroup{
		id:       uuid.Must(uuid.NewV7()),
		members:  members,
		outcomes: haxmap.New[string, error](),
	}
}

// ID returns the group's opaque identifier.
func (g *CommandGroup) ID() uuid.UUID { return g.id }

// Add appends a member. Not safe to call while RunAll is running.
func (g *CommandGroup) Add(mc *ManagedCommand) *CommandGroup {
	g.members = append(g.members, mc)
	return g
}

// Members returns the group's members in arrival order.
func (g *CommandGroup) Members() []*ManagedCommand { return g.members }

// RunAll runs every member concurrently against the shared token and
// returns nil only if all of them succeed. It returns on the first
// failure; the remaining members keep running to their natural
// outcomes, which land in Outcomes.
func (g *CommandGroup) RunAll(tok *Token) error {
	if tok != nil && tok.Cancelled() {
		return ErrAlreadyCancelled
	}
	type settled struct {
		member *ManagedCommand
		err    error
	}
	// Buffered so late settlers never block after RunAll returns.
	ch := make(chan settled, len(g.members))
	for _, mc := range g.members {
		go func(mc *ManagedCommand) {
			err := mc.Run(tok)
			g.outcomes.Set(mc.ID().String(), err)
			ch <- settled{member: mc, err: err}
		}(mc)
	}
	for range g.members {
		s := <-ch
		if s.err != nil {
			return fmt.Errorf("group member %q (%s) failed; %w",
				s.member.Command(), s.member.ID(), s.err)
		}
	}
	return nil
}

// Outcomes returns a snapshot of the latest per-member outcomes,
// keyed by member id. A nil value is a success.
func (g *CommandGroup) Outcomes() map[string]error {
	out := make(map[string]error)
	g.outcomes.ForEach(func(id string, err error) bool {
		out[id] = err
		return true
	})
	return out
}
