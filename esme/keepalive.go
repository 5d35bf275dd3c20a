package esme

import (
	"sync"
	"time"
)

// keepalive fires the liveness probe every interval once armed. It is armed
// on bind success and cancelled on session termination; Stop is safe to
// call more than once and no probe fires after it.
type keepalive struct {
	interval time.Duration
	fire     func()
	stop     chan struct{}
	once     sync.Once
}

func startKeepalive(interval time.Duration, fire func()) *keepalive {
	k := &keepalive{
		interval: interval,
		fire:     fire,
		stop:     make(chan struct{}),
	}
	go k.run()
	return k
}

func (k *keepalive) run() {
	t := time.NewTicker(k.interval)
	defer t.Stop()
	for {
		select {
		case <-k.stop:
			return
		case <-t.C:
			k.fire()
		}
	}
}

func (k *keepalive) Stop() {
	k.once.Do(func() {
		close(k.stop)
	})
}
