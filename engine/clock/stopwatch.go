package clock

import "time"

// StopWatch measures wall-clock time since its first read.
type StopWatch struct {
	now   func() time.Time
	start time.Time
}

// NewStopWatch returns a stopwatch backed by time.Now.
func NewStopWatch() *StopWatch {
	return NewStopWatchFunc(time.Now)
}

// NewStopWatchFunc returns a stopwatch backed by now, which tests replace with a fake clock.
func NewStopWatchFunc(now func() time.Time) *StopWatch {
	return &StopWatch{now: now}
}

// Elapsed returns the time since the first call. The first call starts the stopwatch and returns 0.
func (s *StopWatch) Elapsed() time.Duration {
	t := s.now()
	if s.start.IsZero() {
		s.start = t
		return 0
	}
	return t.Sub(s.start)
}

// Reset makes the next Elapsed call start over.
func (s *StopWatch) Reset() {
	s.start = time.Time{}
}
