//go:build !linux

package affinity

import "github.com/jaredcasper/DALI/threadpool"

// Pin returns a no-op initializer on platforms without sched_setaffinity.
func Pin() threadpool.Initializer {
	return func(int) error { return nil }
}
