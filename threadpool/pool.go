package threadpool

import (
	"fmt"
	"log/slog"
	"sync"
)

// Work is the basic unit of work the pool executes. It receives the slot
// index of the worker running it. A non-nil return is recorded in that
// worker's error log and surfaced later by WaitForWork.
type Work func(worker int) error

// Initializer runs exactly once per worker, on the worker goroutine,
// before any work item. Typical implementations bind the worker to a
// device or pin its OS thread. A failure is recorded in the worker's
// error log; the worker still enters its work loop afterwards.
type Initializer func(worker int) error

// Driver models a process-wide resource tied to the pool's lifetime, such
// as a device driver runtime. Init runs during New before any worker
// starts; a failure there fails construction. Shutdown runs at the end of
// Close, after every worker has exited.
type Driver interface {
	Init() error
	Shutdown()
}

type config struct {
	logger      *slog.Logger
	initializer Initializer
	driver      Driver
}

func defaultConfig() config {
	return config{
		logger: slog.New(discardSlogHandler{}),
	}
}

// Option configures a Pool at construction time.
type Option func(*config)

func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithInitializer(init Initializer) Option {
	return func(c *config) { c.initializer = init }
}

func WithDriver(d Driver) Option {
	return func(c *config) { c.driver = d }
}

// Pool dispatches Work items from an unbounded FIFO queue to a fixed set
// of workers. A single mutex guards the queue, the per-worker error logs
// and the lifecycle flags; hasWork wakes an idle worker after a
// submission, quiescent wakes a WaitForWork caller once the queue is
// empty and no worker is executing.
type Pool struct {
	logger      *slog.Logger
	initializer Initializer
	driver      Driver
	size        int

	mu        sync.Mutex
	hasWork   *sync.Cond // signaled on Submit and broadcast on shutdown
	quiescent *sync.Cond // signaled when the pool drains
	queue     []Work
	errs      [][]*WorkerError // errs[i] is worker i's log, FIFO
	running   bool             // one-way transition to false in Close
	closing   bool             // shutdown has begun, submissions rejected
	complete  bool             // queue empty and no worker executing
	active    int

	workersWG sync.WaitGroup
	closeOnce sync.Once
}

// New starts a fixed pool of long-lived worker goroutines and, if a
// Driver is configured, acquires it first. A non-positive worker count
// fails with ErrInvalidConfiguration before any resource is touched.
func New(workers int, opts ...Option) (*Pool, error) {
	if workers <= 0 {
		return nil, fmt.Errorf("pool must have a positive worker count, got %d: %w", workers, ErrInvalidConfiguration)
	}

	c := defaultConfig()
	for _, o := range opts {
		o(&c)
	}

	if c.driver != nil {
		if err := c.driver.Init(); err != nil {
			return nil, fmt.Errorf("driver init: %w", err)
		}
	}

	p := &Pool{
		logger:      c.logger,
		initializer: c.initializer,
		driver:      c.driver,
		size:        workers,
		errs:        make([][]*WorkerError, workers),
		running:     true,
		complete:    true,
	}
	p.hasWork = sync.NewCond(&p.mu)
	p.quiescent = sync.NewCond(&p.mu)

	p.logger.Info("thread pool starting", slog.Int("workers", workers))

	p.workersWG.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	return p, nil
}

// Submit appends work to the queue and wakes one idle worker. It never
// blocks beyond the queue's critical section. Once Close has begun it
// returns ErrPoolClosed and the item is dropped without executing.
func (p *Pool) Submit(w Work) error {
	p.mu.Lock()
	if p.closing || !p.running {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.queue = append(p.queue, w)
	p.complete = false
	p.mu.Unlock()

	p.hasWork.Signal()
	return nil
}

// WaitForWork blocks until the pool is quiescent: the queue is empty and
// no worker is executing an item. With checkErrors it then drains and
// returns the oldest recorded error of the lowest-indexed failing worker;
// any remaining errors stay queued for subsequent calls. Without
// checkErrors it returns nil and recorded errors stay queued.
func (p *Pool) WaitForWork(checkErrors bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for !p.complete {
		p.quiescent.Wait()
	}

	if !checkErrors {
		return nil
	}
	if we := p.drainFirst(); we != nil {
		return we
	}
	return nil
}

// Size returns the worker count, immutable after construction.
func (p *Pool) Size() int {
	return p.size
}

// QueueLen reports how many submitted items have not been dequeued yet.
func (p *Pool) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ActiveWorkers reports how many workers are currently executing an item.
func (p *Pool) ActiveWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// PendingErrors reports how many captured errors have not been drained.
func (p *Pool) PendingErrors() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, log := range p.errs {
		n += len(log)
	}
	return n
}

// Close drains queued and in-flight work, stops every worker, joins them
// and releases the driver. It is idempotent and safe to call
// concurrently. Errors not drained through WaitForWork beforehand are
// discarded.
func (p *Pool) Close() {
	p.closeOnce.Do(p.close)
}

func (p *Pool) close() {
	p.mu.Lock()
	p.closing = true
	p.mu.Unlock()

	// Let outstanding work finish before stopping the worker loops.
	_ = p.WaitForWork(false)

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
	p.hasWork.Broadcast()
	p.quiescent.Broadcast()

	p.workersWG.Wait()

	if p.driver != nil {
		p.driver.Shutdown()
	}
	p.logger.Info("thread pool shut down")
}

func (p *Pool) worker(id int) {
	defer p.workersWG.Done()

	if err := p.initialize(id); err != nil {
		p.logger.Warn("worker initialization failed", slog.Int("worker", id), slog.String("error", err.Error()))
		p.mu.Lock()
		p.errs[id] = append(p.errs[id], &WorkerError{Worker: id, Kind: KindInitialization, err: err})
		p.mu.Unlock()
	}

	for {
		p.mu.Lock()
		for p.running && len(p.queue) == 0 {
			p.hasWork.Wait()
		}
		if !p.running {
			p.mu.Unlock()
			p.logger.Debug("worker exiting", slog.Int("worker", id))
			return
		}

		w := p.queue[0]
		p.queue = p.queue[1:]
		p.active++
		p.mu.Unlock()

		werr := p.execute(w, id)

		p.mu.Lock()
		if werr != nil {
			p.errs[id] = append(p.errs[id], werr)
		}
		p.active--
		if len(p.queue) == 0 && p.active == 0 {
			p.complete = true
			p.quiescent.Signal()
		}
		p.mu.Unlock()
	}
}

// initialize runs the one-time initializer on the worker goroutine,
// converting a panic into an error so a bad initializer cannot take the
// process down.
func (p *Pool) initialize(id int) (err error) {
	if p.initializer == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initializer panic: %v", r)
		}
	}()
	return p.initializer(id)
}

// execute runs one item, classifying a returned error or a recovered
// panic into an entry for the worker's error log.
func (p *Pool) execute(w Work, id int) (werr *WorkerError) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				werr = &WorkerError{Worker: id, Kind: KindExecution, err: e}
				return
			}
			werr = &WorkerError{Worker: id, Kind: KindUnknown, err: fmt.Errorf("recovered unclassified panic: %v", r)}
		}
	}()

	if err := w(id); err != nil {
		return &WorkerError{Worker: id, Kind: KindExecution, err: err}
	}
	return nil
}
