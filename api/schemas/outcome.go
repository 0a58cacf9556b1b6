// api/schemas/outcome.go
package schemas

// ErrorCode is a structured code attached to failed or degraded outcomes.
// Using a dedicated type keeps free-form strings out of the reporting path.
type ErrorCode string

const (
	ErrCodeCaptureFailure        ErrorCode = "CAPTURE_FAILURE"
	ErrCodeInterpretationFailure ErrorCode = "INTERPRETATION_FAILURE"
	ErrCodeResolutionMiss        ErrorCode = "RESOLUTION_MISS"
	ErrCodeExecutionFailure      ErrorCode = "EXECUTION_FAILURE"
	ErrCodeSafetyHalt            ErrorCode = "SAFETY_HALT"
	ErrCodeUnknownAction         ErrorCode = "UNKNOWN_ACTION_TYPE"
	ErrCodeBusy                  ErrorCode = "EXECUTOR_BUSY"
)

// OutcomeStatus is the terminal status of one executed action.
type OutcomeStatus string

const (
	OutcomeOK         OutcomeStatus = "ok"
	OutcomeNoop       OutcomeStatus = "noop"
	OutcomeFailed     OutcomeStatus = "failed"
	OutcomeSafetyHalt OutcomeStatus = "safety_halt"
	OutcomeRejected   OutcomeStatus = "rejected"
)

// Outcome reports what the executor did with an action. Every submitted
// command produces exactly one Outcome; the pipeline never leaves the caller
// without one.
type Outcome struct {
	Status  OutcomeStatus `json:"status"`
	Code    ErrorCode     `json:"code,omitempty"`
	Message string        `json:"message,omitempty"`
}

// Halted reports whether the safety interlock fired.
func (o Outcome) Halted() bool { return o.Status == OutcomeSafetyHalt }
