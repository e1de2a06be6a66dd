package hazard

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/sarchlab/waitstate/insts"
)

var (
	// ErrInvariantViolation reports a defect in the rule catalogue, such as a
	// triggering instruction whose latency class is missing from the rule's
	// table. Scheduling must abort since the kernel could be under-padded.
	ErrInvariantViolation = errors.New("hazard rule invariant violation")

	// ErrMalformedInstruction reports an instruction that lacks the register
	// metadata an active rule needs to classify it.
	ErrMalformedInstruction = errors.New("malformed instruction")

	// ErrRegistryConsumed is returned when a registry is asked to schedule a
	// second stream. Observer state is never reset; build a new registry.
	ErrRegistryConsumed = errors.New("registry already scheduled a stream")
)

// ScheduleError locates a fatal scheduling failure in the input stream.
type ScheduleError struct {
	Position int               // Index of the offending instruction in the input
	Inst     insts.Instruction // The offending instruction
	Rule     string            // Rule that failed, empty for stream-level errors
	Err      error
}

func (e *ScheduleError) Error() string {
	if e.Rule != "" {
		return fmt.Sprintf("instruction %d (%s): rule %s: %v",
			e.Position, e.Inst.Name, e.Rule, e.Err)
	}
	return fmt.Sprintf("instruction %d (%s): %v", e.Position, e.Inst.Name, e.Err)
}

func (e *ScheduleError) Unwrap() error {
	return e.Err
}

func invariantf(format string, args ...any) error {
	return errors.Wrapf(ErrInvariantViolation, format, args...)
}

func malformedf(format string, args ...any) error {
	return errors.Wrapf(ErrMalformedInstruction, format, args...)
}
