package pulse

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/worker"
)

// FileWorker processes files for one pool worker. Implementations are used
// from a single goroutine.
type FileWorker interface {
	ProcessFile(ctx context.Context, path string, transform config.Transform) (*worker.Result, error)
	Close() error
}

// WorkerFactory builds the FileWorker for worker id
type WorkerFactory func(ctx context.Context, id int) (FileWorker, error)

// Outcome is the settled result of one submitted job
type Outcome struct {
	JobID     string
	Path      string
	Transform config.Transform
	Worker    int
	Result    *worker.Result
	Err       error
	Duration  time.Duration
}

type job struct {
	id        string
	path      string
	transform config.Transform
	done      chan Outcome
}

// PoolConfig configures a Pool
type PoolConfig struct {
	// Size is the number of workers. 0 = runtime.NumCPU().
	Size    int
	Factory WorkerFactory
	// OnStart is called on the worker goroutine before a job is processed
	OnStart func(jobID, path string)
}

// Pool runs a fixed set of workers, each with its own FileWorker and
// mailbox. Jobs are routed by path so jobs for one path run in submission
// order on one worker. Workers share no state.
type Pool struct {
	router    Router
	mailboxes []*mailbox
	workers   []FileWorker
	onStart   func(jobID, path string)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	log    pulseLogger

	mu       sync.Mutex
	closed   bool
	shutdown sync.Once
}

// NewPool creates every worker up front and starts them. If any factory call
// fails the workers already created are closed.
func NewPool(ctx context.Context, cfg PoolConfig, log *zap.SugaredLogger) (*Pool, error) {
	if cfg.Factory == nil {
		return nil, errors.AssertionFailedf("pool requires a worker factory")
	}
	size := cfg.Size
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if log == nil {
		log = logger.Logger
	}

	poolCtx, cancel := context.WithCancel(ctx)
	p := &Pool{
		router:  NewRouter(size),
		onStart: cfg.OnStart,
		ctx:     poolCtx,
		cancel:  cancel,
		log:     pulseLogger{log.Named("pulse")},
	}

	for i := 0; i < size; i++ {
		w, err := cfg.Factory(poolCtx, i)
		if err != nil {
			for _, created := range p.workers {
				_ = created.Close()
			}
			cancel()
			return nil, errors.Wrapf(err, "start worker %d", i)
		}
		p.workers = append(p.workers, w)
		p.mailboxes = append(p.mailboxes, newMailbox())
	}

	for i := range p.workers {
		p.wg.Add(1)
		go p.run(i)
	}
	p.log.Starting("Worker pool started", logger.FieldCount, size)
	return p, nil
}

// Size is the number of workers
func (p *Pool) Size() int {
	return p.router.Size()
}

// Submit queues path on its worker and returns a channel that receives
// exactly one Outcome. It never blocks. After Shutdown the outcome is
// ErrPoolClosed.
func (p *Pool) Submit(path string, transform config.Transform) <-chan Outcome {
	j := &job{
		id:        uuid.NewString(),
		path:      path,
		transform: transform,
		done:      make(chan Outcome, 1),
	}
	idx := p.router.Route(path)

	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()

	if closed || !p.mailboxes[idx].push(j) {
		j.done <- rejected(j, idx)
		return j.done
	}
	if logger.ShouldLogTrace(logger.Verbosity) {
		p.log.Debugw("Job queued",
			logger.FieldJobID, j.id,
			logger.FieldFile, path,
			logger.FieldWorker, idx)
	}
	return j.done
}

// Pending is the number of queued jobs that have not started
func (p *Pool) Pending() int {
	n := 0
	for _, mb := range p.mailboxes {
		n += mb.len()
	}
	return n
}

// Shutdown rejects queued jobs with ErrPoolClosed, lets running jobs finish,
// waits for the workers and closes their FileWorkers. Safe to call more
// than once and from any goroutine other than a worker's OnStart hook.
func (p *Pool) Shutdown() {
	p.shutdown.Do(func() {
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()

		rejectedCount := 0
		for idx, mb := range p.mailboxes {
			for _, j := range mb.close() {
				j.done <- rejected(j, idx)
				rejectedCount++
			}
		}
		if rejectedCount > 0 {
			p.log.Closing("Rejected queued jobs on shutdown", logger.FieldPendingCount, rejectedCount)
		}

		p.wg.Wait()
		p.cancel()

		for i, w := range p.workers {
			if err := w.Close(); err != nil {
				p.log.Warnw("Failed to close worker", logger.FieldWorker, i, logger.FieldError, err)
			}
		}
		p.log.Debugw("Worker pool stopped")
	})
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	mb := p.mailboxes[id]
	w := p.workers[id]

	for {
		j, ok := mb.pop()
		if !ok {
			return
		}
		if p.onStart != nil {
			p.onStart(j.id, j.path)
		}

		start := time.Now()
		res, err := w.ProcessFile(p.ctx, j.path, j.transform)
		if err != nil {
			err = errors.NewFileError(j.path, errors.KindOf(err), err)
		}
		j.done <- Outcome{
			JobID:     j.id,
			Path:      j.path,
			Transform: j.transform,
			Worker:    id,
			Result:    res,
			Err:       err,
			Duration:  time.Since(start),
		}
	}
}

func rejected(j *job, idx int) Outcome {
	return Outcome{
		JobID:     j.id,
		Path:      j.path,
		Transform: j.transform,
		Worker:    idx,
		Err:       errors.NewFileError(j.path, errors.KindCancelled, errors.ErrPoolClosed),
	}
}
