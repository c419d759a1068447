package dispatch

import "sync/atomic"

// Stats tracks pipeline throughput counters and the queue-depth gauge.
// All methods are safe for concurrent use.
type Stats struct {
	processed  atomic.Int64
	errors     atomic.Int64
	dropped    atomic.Int64
	queueDepth atomic.Int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Processed  int64
	Errors     int64
	Dropped    int64
	QueueDepth int64
}

func (s *Stats) addProcessed() { s.processed.Add(1) }
func (s *Stats) addError()     { s.errors.Add(1) }

// setQueueDepth records the backlog observed after a dequeue.
func (s *Stats) setQueueDepth(depth int) { s.queueDepth.Store(int64(depth)) }

// AddDropped records a task rejected before it reached a worker.
func (s *Stats) AddDropped() { s.dropped.Add(1) }

// Snapshot returns the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Processed:  s.processed.Load(),
		Errors:     s.errors.Load(),
		Dropped:    s.dropped.Load(),
		QueueDepth: s.queueDepth.Load(),
	}
}
