package esme

// watcher collects the responses of one SendMessage call and delivers
// exactly one Ack to the caller's receipt channel, then exits. The window
// removal that precedes resolve/fail guarantees at most one result per
// sequence number, so the result channel never overflows its buffer.
type watcher struct {
	want    int
	results chan watcherResult
	receipt chan<- Ack
}

type watcherResult struct {
	part AckPart
	err  error
}

// newWatcher spawns a watcher for the given sequence numbers. The receipt
// channel must be buffered for at least one value.
func newWatcher(seqs []int32, receipt chan<- Ack) *watcher {
	w := &watcher{
		want:    len(seqs),
		results: make(chan watcherResult, len(seqs)),
		receipt: receipt,
	}
	go w.wait()
	return w
}

func (w *watcher) wait() {
	parts := make([]AckPart, 0, w.want)
	var failure error
	for i := 0; i < w.want; i++ {
		r := <-w.results
		if r.err != nil {
			failure = r.err
			continue
		}
		parts = append(parts, r.part)
	}

	ack := Ack{Parts: parts}
	if len(parts) == 0 {
		ack.Err = failure
	}

	select {
	case w.receipt <- ack:
	default:
		// the caller was already answered, never deliver twice
	}
}

// resolve feeds one matched response into the watcher.
func (w *watcher) resolve(part AckPart) {
	select {
	case w.results <- watcherResult{part: part}:
	default:
	}
}

// fail resolves one pending sequence number with an error instead of a
// response. Called on session termination and window expiry.
func (w *watcher) fail(err error) {
	select {
	case w.results <- watcherResult{err: err}:
	default:
	}
}
