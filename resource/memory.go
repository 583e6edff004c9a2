// SPDX-License-Identifier: EPL-2.0

package resource

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/mem"
)

// SystemMemory probes the host with gopsutil.
type SystemMemory struct{}

func (SystemMemory) Available() (uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	return vm.Available, nil
}

// FixedMemory reports a constant, for tests and for hosts that budget
// memory themselves.
type FixedMemory uint64

func (f FixedMemory) Available() (uint64, error) { return uint64(f), nil }
