package latency

import (
	"math"
	"time"

	"github.com/sarchlab/akita/v4/sim"
)

// CostModel converts wait states into wall time at a shader clock.
// It is used for reporting only and never influences scheduling.
type CostModel struct {
	freq sim.Freq
}

// NewCostModel creates a cost model for a shader clock in MHz.
func NewCostModel(clockMHz float64) CostModel {
	return CostModel{freq: sim.Freq(clockMHz) * sim.MHz}
}

// Duration returns the time n wait states occupy one wavefront.
func (m CostModel) Duration(waitStates int) time.Duration {
	if waitStates <= 0 || m.freq <= 0 {
		return 0
	}

	seconds := float64(m.freq.Period()) * float64(waitStates)
	return time.Duration(math.Round(seconds * float64(time.Second)))
}
