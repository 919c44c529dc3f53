package pulse

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
)

// TransformJob is a set of files to process with one transform
type TransformJob struct {
	Files     []string
	Transform config.Transform
}

// State is where a path is in its processing cycle
type State int

const (
	StateIdle State = iota
	StateQueued
	StateProcessing
)

func (s State) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateProcessing:
		return "processing"
	}
	return "idle"
}

// Stats counts settled jobs
type Stats struct {
	Succeeded int
	Written   int
	Failed    int
	Cancelled int
	Queries   int
}

type pathState struct {
	queued int
	// running can briefly reach 2 when the next job for a path starts
	// before the previous outcome is collected
	running int
}

// FileProcessor feeds files into a Pool and applies the failure policy.
//
// Without failOnError, failures are logged and every other job runs. With
// failOnError, the first failure shuts the pool down: running jobs finish,
// queued jobs are rejected and Wait returns ErrFailFast.
type FileProcessor struct {
	pool        *Pool
	failOnError bool
	emitter     ProgressEmitter
	log         *zap.SugaredLogger

	wg sync.WaitGroup

	mu        sync.Mutex
	states    map[string]*pathState
	stats     Stats
	firstFail error
	// failed is closed when failOnError stops the processor
	failed chan struct{}
}

// NewFileProcessor starts a pool from cfg, with its OnStart hook wired to
// path state tracking. A nil emitter discards progress events.
func NewFileProcessor(ctx context.Context, cfg PoolConfig, failOnError bool, emitter ProgressEmitter, log *zap.SugaredLogger) (*FileProcessor, error) {
	if emitter == nil {
		emitter = nopEmitter{}
	}
	if log == nil {
		log = logger.Logger
	}
	fp := &FileProcessor{
		failOnError: failOnError,
		emitter:     emitter,
		log:         log.Named("processor"),
		states:      make(map[string]*pathState),
		failed:      make(chan struct{}),
	}
	cfg.OnStart = fp.started
	pool, err := NewPool(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	fp.pool = pool
	return fp, nil
}

// Push submits one job per file. It never blocks.
func (fp *FileProcessor) Push(tj TransformJob) {
	for _, path := range tj.Files {
		fp.mu.Lock()
		st := fp.state(path)
		st.queued++
		fp.mu.Unlock()

		fp.emitter.EmitQueued(path)
		fp.wg.Add(1)
		done := fp.pool.Submit(path, tj.Transform)
		go fp.collect(done)
	}
}

// Wait blocks until every pushed job has settled. It returns an error
// matching ErrFailFast when failOnError is set and a job failed.
func (fp *FileProcessor) Wait() error {
	fp.wg.Wait()

	fp.mu.Lock()
	defer fp.mu.Unlock()
	if fp.failOnError && fp.firstFail != nil {
		return errors.Wrap(errors.Mark(fp.firstFail, errors.ErrFailFast), "stopped on first failure")
	}
	return nil
}

// State reports where path is in its cycle
func (fp *FileProcessor) State(path string) State {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	st, ok := fp.states[path]
	switch {
	case !ok:
		return StateIdle
	case st.running > 0:
		return StateProcessing
	case st.queued > 0:
		return StateQueued
	}
	return StateIdle
}

// Stats returns counts of settled jobs so far
func (fp *FileProcessor) Stats() Stats {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	return fp.stats
}

// Failed is closed once failOnError has stopped the processor. It never
// closes when failOnError is off.
func (fp *FileProcessor) Failed() <-chan struct{} {
	return fp.failed
}

// Close shuts the pool down
func (fp *FileProcessor) Close() {
	fp.pool.Shutdown()
}

// state returns the entry for path; fp.mu must be held
func (fp *FileProcessor) state(path string) *pathState {
	st, ok := fp.states[path]
	if !ok {
		st = &pathState{}
		fp.states[path] = st
	}
	return st
}

func (fp *FileProcessor) started(jobID, path string) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	st := fp.state(path)
	st.queued--
	st.running++
}

func (fp *FileProcessor) collect(done <-chan Outcome) {
	defer fp.wg.Done()
	o := <-done

	fp.mu.Lock()
	st := fp.state(o.Path)
	if errors.IsPoolClosed(o.Err) {
		st.queued--
	} else {
		st.running--
	}
	if st.queued <= 0 && st.running <= 0 {
		delete(fp.states, o.Path)
	}
	fp.mu.Unlock()

	fp.emitter.EmitOutcome(o)

	switch {
	case errors.IsPoolClosed(o.Err):
		fp.record(func(s *Stats) { s.Cancelled++ })
		fp.log.Debugw("Job cancelled before it started",
			logger.FieldJobID, o.JobID,
			logger.FieldFile, o.Path)

	case o.Err != nil:
		fp.record(func(s *Stats) { s.Failed++ })
		fp.log.Errorw(fmt.Sprintf("Error processing %s", o.Path),
			logger.FieldJobID, o.JobID,
			logger.FieldWorker, o.Worker,
			logger.FieldTransform, o.Transform.String(),
			logger.FieldErrorKind, string(errors.KindOf(o.Err)),
			logger.FieldError, o.Err.Error())
		fp.fail(o.Err)

	default:
		fp.record(func(s *Stats) {
			s.Succeeded++
			s.Queries += o.Result.TypeDeclarationCount
			if o.Result.Written {
				s.Written++
			}
		})
		fields := []interface{}{
			logger.FieldJobID, o.JobID,
			logger.FieldWorker, o.Worker,
			logger.FieldDurationMS, o.Duration.Milliseconds(),
		}
		switch {
		case o.Result.TypeDeclarationCount == 0:
			fp.log.Debugw(fmt.Sprintf("Skipped %s: no queries found", o.Result.RelativePath), fields...)
		case !o.Result.Written:
			fp.log.Debugw(fmt.Sprintf("Unchanged %s", o.Result.OutputPath), fields...)
		default:
			fp.log.Infow(fmt.Sprintf("Saved %d query types from %s to %s",
				o.Result.TypeDeclarationCount, o.Result.RelativePath, o.Result.OutputPath), fields...)
		}
	}
}

func (fp *FileProcessor) record(f func(*Stats)) {
	fp.mu.Lock()
	defer fp.mu.Unlock()
	f(&fp.stats)
}

func (fp *FileProcessor) fail(err error) {
	fp.mu.Lock()
	first := fp.firstFail == nil
	if first {
		fp.firstFail = err
	}
	fp.mu.Unlock()

	if first && fp.failOnError {
		fp.log.Warnw("Stopping on first failure (failOnError is set)", logger.FieldFile, pathOf(err))
		close(fp.failed)
		fp.pool.Shutdown()
	}
}

func pathOf(err error) string {
	var fe *errors.FileError
	if errors.As(err, &fe) {
		return fe.Path
	}
	return ""
}
