// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientMemory = errors.New("insufficient memory for tracks")
	ErrMemoryProbe        = errors.New("cannot determine available memory")
	ErrUnknownGCPolicy    = errors.New("unknown gc policy")
)

// CapacityError reports how far a load overshoots the memory limit.
type CapacityError struct {
	Required  uint64
	Available uint64
	Limit     uint64
	Threshold float64
}

// Shortfall is how many bytes would have to be freed for the load to fit.
func (e *CapacityError) Shortfall() uint64 {
	if e.Required <= e.Limit {
		return 0
	}

	return e.Required - e.Limit
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("%v: tracks need %s but only %s may be used (%.0f%% of %s available), short by %s",
		ErrInsufficientMemory, FormatBytes(e.Required), FormatBytes(e.Limit),
		e.Threshold*100, FormatBytes(e.Available), FormatBytes(e.Shortfall()))
}

func (e *CapacityError) Unwrap() error { return ErrInsufficientMemory }

// FormatBytes renders n with a binary unit, e.g. "1.5 GiB".
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}

	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
