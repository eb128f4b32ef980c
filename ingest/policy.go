package ingest

import (
	"fmt"

	"github.com/poiesic/lorekeep/core"
)

// Policy is consulted before every state transition. It exists as an
// explicit, injectable object so cross-cutting rules (compliance holds,
// maintenance freezes) attach to the state machine without hidden
// global state.
type Policy interface {
	// Allow reports whether the task may move to the next state.
	// Returning an error vetoes the transition; the machine surfaces it
	// as a task failure.
	Allow(task *core.IngestionTask, next core.TaskState) error
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(task *core.IngestionTask, next core.TaskState) error

func (f PolicyFunc) Allow(task *core.IngestionTask, next core.TaskState) error {
	return f(task, next)
}

// transitions is the legal state graph. FAILED is reachable from every
// non-terminal state and CANCELLED from the pre-embedding states, so
// neither appears here; validTransition special-cases them.
var transitions = map[core.TaskState][]core.TaskState{
	core.TaskStateReceived:      {core.TaskStateExtracting},
	core.TaskStateExtracting:    {core.TaskStateAssessing},
	core.TaskStateAssessing:     {core.TaskStateEmbedding},
	core.TaskStateEmbedding:     {core.TaskStateAutoFinalized, core.TaskStatePendingReview},
	core.TaskStatePendingReview: {core.TaskStateFinalized, core.TaskStateRejected},
	core.TaskStateFailed:        {core.TaskStateReceived}, // manual retry
}

// validTransition reports whether the graph permits from -> to.
func validTransition(from, to core.TaskState) bool {
	if to == core.TaskStateFailed {
		return !from.Terminal()
	}
	if to == core.TaskStateCancelled {
		switch from {
		case core.TaskStateReceived, core.TaskStateExtracting, core.TaskStateAssessing:
			return true
		}
		return false
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DefaultPolicy permits exactly the transitions of the state graph.
func DefaultPolicy() Policy {
	return PolicyFunc(func(task *core.IngestionTask, next core.TaskState) error {
		if !validTransition(task.State, next) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, task.State, next)
		}
		return nil
	})
}
