// internal/executor/state.go
package executor

// State is the executor's lifecycle state. Transitions are linear per
// action: Idle -> Dispatching -> Running -> Done -> Idle, with SafetyHalted
// reachable from Dispatching and Running.
type State string

const (
	StateIdle        State = "idle"
	StateDispatching State = "dispatching"
	StateRunning     State = "running"
	StateSafetyHalt  State = "safety_halted"
	StateDone        State = "done"
)
