// SPDX-License-Identifier: EPL-2.0

package latency

import (
	"fmt"
	"time"
)

// Stats summarizes the most recent render blocks.
type Stats struct {
	Count            int // blocks in the window
	Mean             time.Duration
	Min              time.Duration
	Max              time.Duration
	Budget           time.Duration
	UsagePct         float64 // Mean as a percentage of Budget
	PeakUsagePct     float64 // Max as a percentage of Budget
	Xruns            uint64
	TotalBlocks      uint64
	DriverUnderflows uint64
}

// Empty reports whether nothing has been recorded.
func (s Stats) Empty() bool { return s.TotalBlocks == 0 }

func (s Stats) String() string {
	if s.Empty() {
		return "latency: no data"
	}

	return fmt.Sprintf("latency: mean %v min %v max %v (%.1f%% of %v, peak %.1f%%) xruns %d/%d",
		s.Mean, s.Min, s.Max, s.UsagePct, s.Budget, s.PeakUsagePct, s.Xruns, s.TotalBlocks)
}
