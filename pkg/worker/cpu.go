package worker

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
)

// DefaultWorkers returns the number of physical CPU cores. The encoders are
// single-threaded and CPU-bound, so one per physical core avoids
// oversubscription. Falls back to the logical CPU count when the physical
// count is unavailable.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}
