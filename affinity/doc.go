// Package affinity supplies a threadpool.Initializer that pins each
// worker to a CPU, the way a device runtime would bind its host threads.
// Pinning uses sched_setaffinity and is a no-op on platforms without it.
package affinity
