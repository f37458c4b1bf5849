package storage

import (
	"sync"

	"github.com/mmynk/syncdays/internal/models"
)

// GroupWatch is the handle for a WatchGroups subscription. Deliveries on
// Updates are full result sets: each one replaces everything the
// consumer learned from previous deliveries. A slow consumer only ever
// misses intermediate snapshots, never the latest one.
type GroupWatch struct {
	updates chan []*models.Group
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	finished bool
	err      error
}

// NewGroupWatch creates an unstarted watch handle. Store implementations
// push snapshots with Send and end the stream with Finish.
func NewGroupWatch() *GroupWatch {
	return &GroupWatch{
		updates: make(chan []*models.Group, 1),
		done:    make(chan struct{}),
	}
}

// Updates is the delivery channel. It is closed when the watch ends;
// check Err afterwards for a terminal failure.
func (w *GroupWatch) Updates() <-chan []*models.Group { return w.updates }

// Unsubscribe cancels the watch. Safe to call more than once.
func (w *GroupWatch) Unsubscribe() { w.once.Do(func() { close(w.done) }) }

// Done is closed once the consumer unsubscribes. For store
// implementations.
func (w *GroupWatch) Done() <-chan struct{} { return w.done }

// Send delivers a snapshot, replacing any snapshot the consumer has not
// read yet. Reports false once the watch is cancelled or finished. For
// store implementations. Send and Finish serialize on the handle's
// mutex so a concurrent Finish can never close the channel under a
// send in flight.
func (w *GroupWatch) Send(groups []*models.Group) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
	}
	// Latest wins: a pending unread snapshot is stale by definition.
	// The buffer holds one snapshot and only Send fills it, so after
	// the drain this never blocks.
	select {
	case <-w.updates:
	default:
	}
	w.updates <- groups
	return true
}

// Finish closes the delivery channel, recording err as the terminal
// failure (nil for a clean shutdown). Safe to call more than once; only
// the first call records err. For store implementations.
func (w *GroupWatch) Finish(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return
	}
	w.finished = true
	w.err = err
	close(w.updates)
}

// Err returns the terminal failure, if any, after Updates is closed.
func (w *GroupWatch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// DayWatch is the handle for a WatchDays subscription. Each delivery is
// the complete current mapping from date key to day record for the
// watched group, with the same full-replace and latest-wins semantics as
// GroupWatch.
type DayWatch struct {
	updates chan map[string]*models.DayRecord
	done    chan struct{}
	once    sync.Once

	mu       sync.Mutex
	finished bool
	err      error
}

// NewDayWatch creates an unstarted watch handle.
func NewDayWatch() *DayWatch {
	return &DayWatch{
		updates: make(chan map[string]*models.DayRecord, 1),
		done:    make(chan struct{}),
	}
}

// Updates is the delivery channel. It is closed when the watch ends.
func (w *DayWatch) Updates() <-chan map[string]*models.DayRecord { return w.updates }

// Unsubscribe cancels the watch. Safe to call more than once.
func (w *DayWatch) Unsubscribe() { w.once.Do(func() { close(w.done) }) }

// Done is closed once the consumer unsubscribes. For store
// implementations.
func (w *DayWatch) Done() <-chan struct{} { return w.done }

// Send delivers a snapshot, replacing any unread one. Reports false once
// the watch is cancelled or finished. For store implementations.
func (w *DayWatch) Send(days map[string]*models.DayRecord) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return false
	}
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case <-w.updates:
	default:
	}
	w.updates <- days
	return true
}

// Finish closes the delivery channel with an optional terminal error.
// Safe to call more than once; only the first call records err. For
// store implementations.
func (w *DayWatch) Finish(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.finished {
		return
	}
	w.finished = true
	w.err = err
	close(w.updates)
}

// Err returns the terminal failure, if any, after Updates is closed.
func (w *DayWatch) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}
