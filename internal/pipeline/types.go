package pipeline

import "time"

// Stage describes a phase of module generation.
type Stage string

const (
	// StageLoad reads and links the declaration tree.
	StageLoad Stage = "load"
	// StageGenerate produces the wrapper text.
	StageGenerate Stage = "generate"
	// StageWrite stores the header and source files.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the module is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the module is in the given stage.
	StatusWorking Status = "working"
	// StatusCached indicates the output came from the cache.
	StatusCached Status = "cached"
	// StatusSkipped indicates the module was not generated because a
	// dependency failed.
	StatusSkipped Status = "skipped"
	// StatusDone indicates the module is done.
	StatusDone Status = "done"
	// StatusError indicates the module failed.
	StatusError Status = "error"
)

// Event reports progress for a module (or for the whole run when Module is empty).
type Event struct {
	Module  string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from
// several goroutines.
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

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, module string, stage Stage, status Status, err error, elapsed time.Duration) {
	if sink == nil {
		return
	}
	sink.OnEvent(Event{Module: module, Stage: stage, Status: status, Err: err, Elapsed: elapsed})
}
