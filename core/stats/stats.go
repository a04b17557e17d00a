package stats

import "sync/atomic"

// Counters holds the process-wide play and download totals. They are
// monotonic for the life of the process and reset to zero on restart;
// persisting them is a non-goal.
type Counters struct {
	plays     atomic.Int64
	downloads atomic.Int64
}

// NewCounters returns zeroed counters.
func NewCounters() *Counters {
	return &Counters{}
}

// RecordPlay increments the play total and returns the new value.
func (c *Counters) RecordPlay() int64 {
	return c.plays.Add(1)
}

// RecordDownload increments the download total and returns the new value.
func (c *Counters) RecordDownload() int64 {
	return c.downloads.Add(1)
}

// Plays returns the current play total.
func (c *Counters) Plays() int64 {
	return c.plays.Load()
}

// Downloads returns the current download total.
func (c *Counters) Downloads() int64 {
	return c.downloads.Load()
}
