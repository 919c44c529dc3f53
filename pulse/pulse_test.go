package pulse

import (
	"context"
	"sync"
	"time"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/worker"
)

// recorder collects the order jobs ran in, across workers
type recorder struct {
	mu   sync.Mutex
	runs []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, s)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.runs...)
}

// fakeWorker records each job as path+"#"+transform.Include
type fakeWorker struct {
	rec    *recorder
	fail   map[string]bool
	delay  map[string]time.Duration
	gate   chan struct{}
	closed bool
}

func (w *fakeWorker) ProcessFile(_ context.Context, path string, t config.Transform) (*worker.Result, error) {
	if w.gate != nil {
		<-w.gate
	}
	if d := w.delay[path+"#"+t.Include]; d > 0 {
		time.Sleep(d)
	}
	w.rec.add(path + "#" + t.Include)
	if w.fail[path] {
		return nil, errors.NewFileError(path, errors.KindUpstream, errors.New("relation does not exist"))
	}
	return &worker.Result{RelativePath: path, OutputPath: path + ".types.ts", TypeDeclarationCount: 1, Written: true}, nil
}

func (w *fakeWorker) Close() error {
	w.closed = true
	return nil
}

type fakeFleet struct {
	mu      sync.Mutex
	rec     *recorder
	workers []*fakeWorker
	setup   func(*fakeWorker)
}

func newFleet(setup func(*fakeWorker)) *fakeFleet {
	return &fakeFleet{rec: &recorder{}, setup: setup}
}

func (f *fakeFleet) factory(_ context.Context, _ int) (FileWorker, error) {
	w := &fakeWorker{rec: f.rec}
	if f.setup != nil {
		f.setup(w)
	}
	f.mu.Lock()
	f.workers = append(f.workers, w)
	f.mu.Unlock()
	return w, nil
}

func transform(tag string) config.Transform {
	return config.Transform{Mode: config.ModeSQL, Include: tag}
}
