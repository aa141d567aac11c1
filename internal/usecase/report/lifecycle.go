package report

import (
	"context"
	"log/slog"

	"github.com/looplab/fsm"
)

// Digest lifecycle states. A digest is empty until a draft is composed,
// drafted until it is delivered, and published after delivery. Composing
// again from any state starts a fresh digest.
const (
	StateEmpty     = "empty"
	StateDrafted   = "drafted"
	StatePublished = "published"
)

// Digest lifecycle events.
const (
	EventCompose = "compose"
	EventDeliver = "deliver"
)

// Lifecycle tracks where the current digest sits between the draft and
// publish operations. The draft file on disk remains the source of truth;
// the machine exists so long-running schedulers can observe and log the
// progression, and so a deliver can never be recorded twice for one draft.
type Lifecycle struct {
	machine *fsm.FSM
}

// NewLifecycle builds the digest state machine. hasDraft seeds the initial
// state from the filesystem so a process restarted between drafting and
// publishing resumes where it left off.
func NewLifecycle(hasDraft bool) *Lifecycle {
	initial := StateEmpty
	if hasDraft {
		initial = StateDrafted
	}

	machine := fsm.NewFSM(
		initial,
		fsm.Events{
			{Name: EventCompose, Src: []string{StateEmpty, StateDrafted, StatePublished}, Dst: StateDrafted},
			{Name: EventDeliver, Src: []string{StateDrafted}, Dst: StatePublished},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				slog.Debug("digest lifecycle transition",
					slog.String("from", e.Src),
					slog.String("to", e.Dst),
					slog.String("event", e.Event),
				)
			},
		},
	)

	return &Lifecycle{machine: machine}
}

// Fire attempts the named event and returns the machine's error when the
// transition is not allowed from the current state.
func (l *Lifecycle) Fire(ctx context.Context, event string) error {
	return l.machine.Event(ctx, event)
}

// CanDeliver reports whether a deliver event is valid from the current state.
func (l *Lifecycle) CanDeliver() bool {
	return l.machine.Can(EventDeliver)
}

// State returns the current lifecycle state.
func (l *Lifecycle) State() string {
	return l.machine.Current()
}
