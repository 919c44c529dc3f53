package commands

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/golergka/pgtyped/errors"
	"github.com/golergka/pgtyped/pulse"
)

type failure struct {
	path string
	kind errors.Kind
	err  error
}

// summaryEmitter keeps failed outcomes for the end-of-run report
type summaryEmitter struct {
	mu     sync.Mutex
	queued int
	failed []failure
}

func newSummaryEmitter() *summaryEmitter {
	return &summaryEmitter{}
}

func (e *summaryEmitter) EmitQueued(string) {
	e.mu.Lock()
	e.queued++
	e.mu.Unlock()
}

func (e *summaryEmitter) EmitOutcome(o pulse.Outcome) {
	if o.Err == nil || errors.IsPoolClosed(o.Err) {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failed = append(e.failed, failure{path: o.Path, kind: errors.KindOf(o.Err), err: o.Err})
}

func (e *summaryEmitter) failures() []failure {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := append([]failure(nil), e.failed...)
	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })
	return out
}

func (e *summaryEmitter) total() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.queued
}

func printSummary(stats pulse.Stats, emitter *summaryEmitter, elapsed time.Duration, err error) {
	failed := emitter.failures()
	pterm.Println()
	if len(failed) > 0 {
		data := pterm.TableData{{"File", "Kind", "Error"}}
		for _, f := range failed {
			data = append(data, []string{f.path, string(f.kind), errors.UnwrapAll(f.err).Error()})
		}
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		for _, f := range failed {
			for _, hint := range errors.GetAllHints(f.err) {
				pterm.Info.Printfln("%s: %s", f.path, hint)
			}
		}
	}

	line := fmt.Sprintf("%d/%d files processed, %d written, %d query types in %s",
		stats.Succeeded, emitter.total(), stats.Written, stats.Queries, elapsed.Round(time.Millisecond))
	switch {
	case errors.Is(err, errors.ErrFailFast):
		pterm.Error.Printfln("Stopped on first failure: %s (%d not processed)", line, stats.Cancelled)
	case err != nil:
		pterm.Error.Printfln("Generation aborted: %v", err)
	case stats.Failed > 0:
		pterm.Warning.Printfln("%s, %d failed", line, stats.Failed)
	default:
		pterm.Success.Println(line)
	}
}
