package esme

import (
	"sync"
	"time"
)

// Window tracks submissions awaiting a response, keyed by sequence number.
// It holds at most one watcher per sequence number and every entry leaves
// the window exactly once: matched, drained or expired.
type Window struct {
	size int
	wait int64 // seconds, <= 0 disables expiry
	data map[int32]*windowEntry
	mu   sync.Mutex
}

type windowEntry struct {
	watcher *watcher
	putAt   int64
}

func NewWindow(size int, wait time.Duration) *Window {
	return &Window{
		size: size,
		wait: int64(wait.Seconds()),
		data: make(map[int32]*windowEntry, size),
	}
}

// Put registers a watcher under seq. A duplicate sequence number is a
// programming error on the caller's side, not a peer problem.
func (w *Window) Put(seq int32, wt *watcher) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.data) >= w.size {
		return ErrWindowFull
	}
	if _, ok := w.data[seq]; ok {
		return ErrDuplicateSequence
	}

	w.data[seq] = &windowEntry{watcher: wt, putAt: time.Now().Unix()}

	return nil
}

// Take removes and returns the watcher registered under seq, nil if absent.
func (w *Window) Take(seq int32) *watcher {
	w.mu.Lock()
	entry, ok := w.data[seq]
	if ok {
		delete(w.data, seq)
	}
	w.mu.Unlock()

	if !ok {
		return nil
	}
	return entry.watcher
}

// Has reports whether seq is currently outstanding.
func (w *Window) Has(seq int32) bool {
	w.mu.Lock()
	_, ok := w.data[seq]
	w.mu.Unlock()

	return ok
}

func (w *Window) Len() int {
	w.mu.Lock()
	n := len(w.data)
	w.mu.Unlock()

	return n
}

// Drain empties the window and returns every outstanding watcher. Used on
// session termination so no watcher is left hanging.
func (w *Window) Drain() []*watcher {
	w.mu.Lock()
	watchers := make([]*watcher, 0, len(w.data))
	for seq, entry := range w.data {
		delete(w.data, seq)
		watchers = append(watchers, entry.watcher)
	}
	w.mu.Unlock()

	return watchers
}

// TakeExpired removes and returns the watchers older than the configured
// wait.
func (w *Window) TakeExpired() []*watcher {
	if w.wait <= 0 {
		return nil
	}

	watchers := make([]*watcher, 0, w.size/5)

	w.mu.Lock()
	curr := time.Now().Unix()
	for seq, entry := range w.data {
		if curr-w.wait > entry.putAt {
			delete(w.data, seq)
			watchers = append(watchers, entry.watcher)
		}
	}
	w.mu.Unlock()

	return watchers
}
