// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"sync/atomic"

	"github.com/ik5/stemmix/utils"
)

// DefaultSmoothing is the fraction of the remaining distance to the target
// covered per block. At 1024 frames and 48 kHz a step settles to within 1%
// in about 30 blocks, roughly 0.6 s.
const DefaultSmoothing = 0.15

// below this the smoother snaps to the target, keeping the filter out of
// denormal territory
const snapEpsilon = 1e-6

// gainValue is a float32 gain in [0, 1] that can be shared with the render
// path. Every store clamps.
type gainValue struct {
	bits atomic.Uint32
}

func (g *gainValue) Load() float32 {
	return math.Float32frombits(g.bits.Load())
}

func (g *gainValue) Store(v float32) {
	g.bits.Store(math.Float32bits(utils.Clamp01(v)))
}

// Smoother is the per-block exponential gain filter.
type Smoother struct {
	alpha float32
}

// NewSmoother builds a smoother. alpha outside (0, 1] or NaN yields the
// default.
func NewSmoother(alpha float32) Smoother {
	if !(alpha > 0 && alpha <= 1) {
		alpha = DefaultSmoothing
	}

	return Smoother{alpha: alpha}
}

func (s Smoother) Alpha() float32 { return s.alpha }

// Step moves current one block towards target.
func (s Smoother) Step(current, target float32) float32 {
	next := current*(1-s.alpha) + target*s.alpha
	if d := next - target; d < snapEpsilon && d > -snapEpsilon {
		next = target
	}

	return utils.Clamp01(next)
}
