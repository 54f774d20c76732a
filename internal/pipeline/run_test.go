package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestRunBuildsEveryInput(t *testing.T) {
	var mu sync.Mutex
	built := make(map[string]bool)
	files := []string{"a.corb", "b.corb", "c.corb"}

	results, err := Run(context.Background(), files, func(ctx context.Context, file string, sink ProgressSink) error {
		mu.Lock()
		built[file] = true
		mu.Unlock()
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != len(files) {
		t.Fatalf("result count = %d, want %d", len(results), len(files))
	}
	for i, res := range results {
		if res.File != files[i] {
			t.Fatalf("results out of order: %q at %d", res.File, i)
		}
		if res.Err != nil {
			t.Fatalf("unexpected error for %q: %v", res.File, res.Err)
		}
	}
	for _, f := range files {
		if !built[f] {
			t.Fatalf("%q not built", f)
		}
	}
}

func TestRunReportsFailures(t *testing.T) {
	boom := errors.New("boom")
	files := []string{"good.corb", "bad.corb"}
	results, err := Run(context.Background(), files, func(ctx context.Context, file string, sink ProgressSink) error {
		if file == "bad.corb" {
			return boom
		}
		return nil
	}, nil)
	if err == nil {
		t.Fatal("Run must surface the build error")
	}
	if results[1].Err == nil {
		t.Fatal("the failing input must carry its error")
	}
}

func TestRunStreamsEvents(t *testing.T) {
	events := make(chan Event, 64)
	_, err := Run(context.Background(), []string{"x.corb"}, func(ctx context.Context, file string, sink ProgressSink) error {
		sink.OnEvent(Event{File: file, Stage: StageCompile, Status: StatusWorking})
		return nil
	}, ChannelSink{Ch: events})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	close(events)
	var sawQueued, sawWorking, sawDone bool
	for ev := range events {
		switch ev.Status {
		case StatusQueued:
			sawQueued = true
		case StatusWorking:
			sawWorking = true
		case StatusDone:
			sawDone = true
		}
	}
	if !sawQueued || !sawWorking || !sawDone {
		t.Fatalf("event stream incomplete: queued=%v working=%v done=%v", sawQueued, sawWorking, sawDone)
	}
}
