package threadpool

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned by New when the requested worker
// count is not positive.
var ErrInvalidConfiguration = errors.New("invalid pool configuration")

// ErrPoolClosed is returned by Submit once shutdown has begun.
var ErrPoolClosed = errors.New("pool is closed")

// Kind classifies where a captured worker failure came from.
type Kind int

const (
	// KindInitialization marks a failure of the one-time worker
	// initializer.
	KindInitialization Kind = iota
	// KindExecution marks an error returned, or an error-valued panic
	// raised, by a work item.
	KindExecution
	// KindUnknown marks a recovered panic that carried no error value.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindInitialization:
		return "initialization"
	case KindExecution:
		return "execution"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// WorkerError is a failure captured on a worker goroutine and surfaced
// later through WaitForWork. It wraps the original error.
type WorkerError struct {
	Worker int
	Kind   Kind
	err    error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("error in worker %d: %s: %v", e.Worker, e.Kind, e.err)
}

func (e *WorkerError) Unwrap() error {
	return e.err
}

// drainFirst removes and returns the oldest error of the lowest-indexed
// worker with a non-empty log, or nil when every log is empty. Within a
// worker's log entries keep recording order. Caller must hold p.mu.
func (p *Pool) drainFirst() *WorkerError {
	for i := range p.errs {
		if len(p.errs[i]) == 0 {
			continue
		}
		we := p.errs[i][0]
		p.errs[i] = p.errs[i][1:]
		return we
	}
	return nil
}
