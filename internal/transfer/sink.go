package transfer

import "log"

// Sink receives one Progress per iteration. Sinks are passive observers:
// they must not mutate engine state, and nothing they do can stop the run.
type Sink interface {
	OnProgress(p Progress)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(p Progress)

// OnProgress calls f(p).
func (f SinkFunc) OnProgress(p Progress) { f(p) }

// LogSink logs loss values every Interval iterations (and on checkpoints)
// using a standard library logger.
type LogSink struct {
	Logger   *log.Logger // defaults to log.Default()
	Interval int         // defaults to 1
}

// OnProgress logs the iteration's losses.
func (s *LogSink) OnProgress(p Progress) {
	interval := s.Interval
	if interval <= 0 {
		interval = 1
	}
	if p.Record.Iteration%interval != 0 && p.Snapshot == nil {
		return
	}

	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("iteration %d: total=%.6g content=%.6g style=%.6g",
		p.Record.Iteration, p.Record.Total, p.Record.Content, p.Record.Style)
}
