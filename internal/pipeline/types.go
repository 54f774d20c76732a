package pipeline

import "time"

// Stage describes a high-level build phase.
type Stage string

const (
	// StageLoad is the snapshot decode stage.
	StageLoad Stage = "load"
	// StageCompile is the lowering stage.
	StageCompile Stage = "compile"
	// StageWrite is the output stage.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the build is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the build is currently working.
	StatusWorking Status = "working"
	// StatusDone indicates the build is done.
	StatusDone Status = "done"
	// StatusError indicates the build encountered an error.
	StatusError Status = "error"
)

// Event reports progress for an input file (or for the overall pipeline
// when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// NopSink drops events.
type NopSink struct{}

func (NopSink) OnEvent(Event) {}
