//go:build linux

package affinity

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/jaredcasper/DALI/threadpool"
)

// Pin returns an initializer that locks each worker goroutine to its OS
// thread and pins that thread to a single CPU, chosen round-robin by
// worker slot index from the CPUs the process is allowed to run on. The
// OS thread lock is never released: the binding must hold for the
// worker's whole lifetime.
func Pin() threadpool.Initializer {
	return func(worker int) error {
		runtime.LockOSThread()

		var allowed unix.CPUSet
		if err := unix.SchedGetaffinity(0, &allowed); err != nil {
			return fmt.Errorf("read cpu set for worker %d: %w", worker, err)
		}
		cpus := make([]int, 0, allowed.Count())
		for cpu := 0; len(cpus) < allowed.Count() && cpu < len(allowed)*64; cpu++ {
			if allowed.IsSet(cpu) {
				cpus = append(cpus, cpu)
			}
		}
		if len(cpus) == 0 {
			return fmt.Errorf("no cpus available to pin worker %d", worker)
		}

		target := cpus[worker%len(cpus)]
		var set unix.CPUSet
		set.Zero()
		set.Set(target)
		if err := unix.SchedSetaffinity(0, &set); err != nil {
			return fmt.Errorf("pin worker %d to cpu %d: %w", worker, target, err)
		}
		return nil
	}
}
