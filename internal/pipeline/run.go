package pipeline

import (
	"context"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// BuildFunc compiles one input file. The lowering core is single-threaded,
// so each invocation must use its own compiler and program instances.
type BuildFunc func(ctx context.Context, file string, sink ProgressSink) error

// Result pairs an input with its terminal state.
type Result struct {
	File    string
	Err     error
	Elapsed time.Duration
}

// Run builds every input, fanning out across CPUs. Events stream into
// sink; the returned results keep input order. The first hard error
// cancels the remaining builds.
func Run(ctx context.Context, files []string, build BuildFunc, sink ProgressSink) ([]Result, error) {
	if sink == nil {
		sink = NopSink{}
	}
	results := make([]Result, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, file := range files {
		sink.OnEvent(Event{File: file, Stage: StageLoad, Status: StatusQueued})
		g.Go(func() error {
			started := time.Now()
			err := build(gctx, file, sink)
			elapsed := time.Since(started)
			results[i] = Result{File: file, Err: err, Elapsed: elapsed}
			status := StatusDone
			if err != nil {
				status = StatusError
			}
			sink.OnEvent(Event{File: file, Stage: StageWrite, Status: status, Err: err, Elapsed: elapsed})
			return err
		})
	}
	err := g.Wait()
	return results, err
}
