// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"sync/atomic"
	"time"
)

// Clock is a manual time source that counts how often it is read. Each
// Now call advances it by Step.
type Clock struct {
	Step time.Duration

	calls atomic.Int64
	now   atomic.Int64
}

func NewClock(step time.Duration) *Clock {
	return &Clock{Step: step}
}

func (c *Clock) Now() time.Time {
	c.calls.Add(1)
	ns := c.now.Add(int64(c.Step))

	return time.Unix(0, ns)
}

// Calls is how many times Now has been called.
func (c *Clock) Calls() int64 { return c.calls.Load() }
