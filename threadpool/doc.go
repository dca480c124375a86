// Package threadpool implements a fixed-size pool of long-lived workers
// draining a shared FIFO queue.
//
// Each worker may run a one-time initializer (device binding, CPU
// affinity) before it accepts work. Failures from the initializer or from
// work items never cross goroutine boundaries: they are captured in the
// failing worker's error log and raised synchronously, one per call, by
// WaitForWork.
package threadpool
