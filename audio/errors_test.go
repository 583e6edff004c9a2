// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"testing"
)

func TestErrInvalidDstSize(t *testing.T) {
	t.Parallel()

	expectedMsg := "dst size must be multiple of channels"
	if ErrInvalidDstSize.Error() != expectedMsg {
		t.Errorf("ErrInvalidDstSize.Error() = %q, want %q", ErrInvalidDstSize.Error(), expectedMsg)
	}
}

func TestErrors_Wrapping(t *testing.T) {
	t.Parallel()

	for _, target := range []error{ErrInvalidDstSize, ErrInvalidChannels} {
		wrapped := errors.Join(target, errors.New("additional context"))
		if !errors.Is(wrapped, target) {
			t.Errorf("errors.Is() failed for wrapped %v", target)
		}
	}

	if errors.Is(ErrInvalidDstSize, ErrInvalidChannels) {
		t.Error("distinct sentinels compare equal")
	}
}
