package postgres

import (
	"strconv"
	"sync"
	"time"

	"github.com/lib/pq"
	log "github.com/sirupsen/logrus"
)

// changeHub shares one LISTEN connection between every weight subscriber
// of the process and wakes the subscribers of the user that changed.
type changeHub struct {
	connStr string

	mu       sync.Mutex
	listener *pq.Listener
	stop     chan struct{}
	done     chan struct{}
	subs     map[int64]map[chan struct{}]struct{}
}

func newChangeHub(connStr string) *changeHub {
	return &changeHub{
		connStr: connStr,
		subs:    make(map[int64]map[chan struct{}]struct{}),
	}
}

// subscribe returns a wake channel for userID. The listener is started by
// the first subscription and kept until close.
func (h *changeHub) subscribe(userID int64) (chan struct{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		if err := h.startLocked(); err != nil {
			return nil, err
		}
	}
	return h.registerLocked(userID), nil
}

func (h *changeHub) startLocked() error {
	l := pq.NewListener(h.connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.WithError(err).Warn("weight listener")
		}
	})
	if err := l.Listen(weightChannel); err != nil {
		_ = l.Close()
		return err
	}
	h.listener = l
	h.stop = make(chan struct{})
	h.done = make(chan struct{})
	go h.run(l, h.stop, h.done)
	return nil
}

func (h *changeHub) run(l *pq.Listener, stop, done chan struct{}) {
	defer close(done)

	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ping.C:
			go l.Ping() //nolint:errcheck
		case n := <-l.Notify:
			h.dispatch(n)
		}
	}
}

func (h *changeHub) register(userID int64) chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registerLocked(userID)
}

func (h *changeHub) registerLocked(userID int64) chan struct{} {
	wake := make(chan struct{}, 1)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan struct{}]struct{})
	}
	h.subs[userID][wake] = struct{}{}
	return wake
}

func (h *changeHub) unregister(userID int64, wake chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[userID], wake)
	if len(h.subs[userID]) == 0 {
		delete(h.subs, userID)
	}
}

// dispatch wakes the subscribers named by a notification. A nil
// notification follows a reconnect, when changes may have been missed, so
// everyone is woken.
func (h *changeHub) dispatch(n *pq.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if n == nil {
		for _, subs := range h.subs {
			wakeAll(subs)
		}
		return
	}
	userID, err := strconv.ParseInt(n.Extra, 10, 64)
	if err != nil {
		log.Warnf("weight listener: bad payload %q", n.Extra)
		return
	}
	wakeAll(h.subs[userID])
}

// wakeAll never blocks; a pending wake already covers the new change.
func wakeAll(subs map[chan struct{}]struct{}) {
	for wake := range subs {
		select {
		case wake <- struct{}{}:
		default:
		}
	}
}

func (h *changeHub) close() error {
	h.mu.Lock()
	l, stop, done := h.listener, h.stop, h.done
	h.listener = nil
	h.mu.Unlock()

	if l == nil {
		return nil
	}
	close(stop)
	<-done
	return l.Close()
}
