package engine

import "errors"

var (
	// ErrInvalidInput is returned when a required response or context is missing
	ErrInvalidInput = errors.New("user response and context are required")

	// ErrGenerationFailed is returned when the text-generation collaborator
	// fails; no session state is mutated, so retrying is always safe
	ErrGenerationFailed = errors.New("question generation failed")

	// ErrAssumptionCycle is returned when an assumption dependency edge
	// would create a cycle
	ErrAssumptionCycle = errors.New("assumption dependency cycle")

	// ErrUnknownAssumption is returned when a dependency references an
	// assumption id not in the session's set
	ErrUnknownAssumption = errors.New("unknown assumption id")
)
