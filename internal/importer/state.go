package importer

import "fmt"

// State is the import batch's lifecycle position. Transitions only move
// forward, except previewing may return to mapping for column fixes and
// any state may reset to idle.
type State string

const (
	StateIdle       State = "idle"
	StateParsing    State = "parsing"
	StateMapping    State = "mapping"
	StatePreviewing State = "previewing"
	StateCommitting State = "committing"
	StateEnriching  State = "enriching"
	StateComplete   State = "complete"
)

var transitions = map[State][]State{
	StateIdle:       {StateParsing, StatePreviewing}, // previewing directly for pre-structured input
	StateParsing:    {StateMapping},
	StateMapping:    {StatePreviewing},
	StatePreviewing: {StateMapping, StateCommitting},
	StateCommitting: {StateEnriching, StateComplete}, // complete directly when the store can't update
	StateEnriching:  {StateComplete},
	StateComplete:   {},
}

// CanTransition reports whether moving from one state to another is
// allowed. Resetting to idle is always allowed.
func CanTransition(from, to State) bool {
	if to == StateIdle {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// transition moves the orchestrator to the next state or reports the
// violated edge.
func (o *Orchestrator) transition(to State) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !CanTransition(o.state, to) {
		return fmt.Errorf("invalid state transition %s -> %s", o.state, to)
	}
	o.state = to
	return nil
}
