package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/golergka/pgtyped/config"
	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/logger"
	"github.com/golergka/pgtyped/pulse"
)

// Controller pushes a single-file job whenever a file matching a transform
// is added or changed under srcDir. Events for one path and transform are
// coalesced over the debounce period.
type Controller struct {
	srcDir     string
	transforms []config.Transform
	debounce   time.Duration
	proc       Processor
	log        *zap.SugaredLogger

	watcher *fsnotify.Watcher

	mu     sync.Mutex
	timers map[timerKey]*time.Timer
}

type timerKey struct {
	path    string
	include string
}

// NewController builds a controller for cfg's srcDir and transforms
func NewController(cfg *config.Config, proc Processor, log *zap.SugaredLogger) *Controller {
	if log == nil {
		log = logger.Logger
	}
	return &Controller{
		srcDir:     cfg.SrcDir,
		transforms: cfg.Transforms,
		debounce:   cfg.Watch.Debounce,
		proc:       proc,
		log:        log.Named("watch"),
		timers:     make(map[timerKey]*time.Timer),
	}
}

// Run processes every existing matching file, then reacts to changes until
// ctx is cancelled. It returns nil on cancellation. If the processor stops on
// a failure (failOnError), Run returns its error, which matches ErrFailFast.
func (c *Controller) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	c.watcher = watcher
	defer watcher.Close()

	if err := c.addTree(c.srcDir); err != nil {
		return err
	}

	for _, t := range c.transforms {
		files, err := Enumerate(c.srcDir, t.Include)
		if err != nil {
			return err
		}
		c.proc.Push(pulse.TransformJob{Files: files, Transform: t})
	}
	c.log.Infow("Watching for changes", "src_dir", c.srcDir)

	var failed <-chan struct{}
	if ff, ok := c.proc.(failFaster); ok {
		failed = ff.Failed()
	}

	for {
		select {
		case <-ctx.Done():
			c.stopTimers()
			c.log.Debugw("Watch stopped")
			return nil

		case <-failed:
			c.stopTimers()
			c.log.Debugw("Watch stopped on failure")
			return c.proc.Wait()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			c.handle(event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			c.log.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

func (c *Controller) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// removed again before we looked
		return
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			c.addNewDir(event.Name)
		}
		return
	}

	if logger.ShouldLogTrace(logger.Verbosity) {
		c.log.Debugw("File changed", logger.FieldFile, event.Name, logger.FieldOp, event.Op.String())
	}
	c.matchAndSchedule(event.Name)
}

// addNewDir watches a directory created after start and schedules the files
// that were written into it before the watch was in place
func (c *Controller) addNewDir(dir string) {
	if err := c.addTree(dir); err != nil {
		c.log.Warnw("Failed to watch new directory", logger.FieldFile, dir, logger.FieldError, err)
		return
	}
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err == nil && !d.IsDir() {
			c.matchAndSchedule(path)
		}
		return nil
	})
}

func (c *Controller) matchAndSchedule(path string) {
	rel, err := filepath.Rel(c.srcDir, path)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	for _, t := range c.transforms {
		if matches(t.Include, rel) {
			c.schedule(path, t)
		}
	}
}

func (c *Controller) schedule(path string, t config.Transform) {
	if c.debounce <= 0 {
		c.proc.Push(pulse.TransformJob{Files: []string{path}, Transform: t})
		return
	}

	key := timerKey{path: path, include: t.Include}
	c.mu.Lock()
	defer c.mu.Unlock()
	if timer, ok := c.timers[key]; ok {
		timer.Stop()
	}
	c.timers[key] = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		delete(c.timers, key)
		c.mu.Unlock()
		c.proc.Push(pulse.TransformJob{Files: []string{path}, Transform: t})
	})
}

func (c *Controller) stopTimers() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, timer := range c.timers {
		timer.Stop()
		delete(c.timers, key)
	}
}

// addTree watches root and every directory below it
func (c *Controller) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "walk %s", path)
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := c.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}
