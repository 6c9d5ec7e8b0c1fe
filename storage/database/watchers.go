package database

import (
	"context"
	"sync"

	"github.com/trezcool/edusite/core"
)

// LoadFunc reads the current state of a watched document.
type LoadFunc func(ctx context.Context) (doc core.Document, exists bool, err error)

// Watchers fans document-change signals out to subscribers.
// Signals are coalesced: a slow subscriber only ever sees the latest state.
type Watchers struct {
	mu   sync.Mutex
	subs map[string]map[*watcher]struct{}
}

type watcher struct {
	key    string
	load   LoadFunc
	fn     core.WatchFunc
	onErr  func(error)
	notify chan struct{}
	done   chan struct{}
	once   sync.Once
	parent *Watchers
}

func NewWatchers() *Watchers {
	return &Watchers{subs: make(map[string]map[*watcher]struct{})}
}

func watchKey(collection, id string) string {
	return collection + "/" + id
}

// Add registers fn for the document and delivers its current state right away.
func (ws *Watchers) Add(ctx context.Context, collection, id string, load LoadFunc, fn core.WatchFunc, onErr func(error)) core.Subscription {
	w := &watcher{
		key:    watchKey(collection, id),
		load:   load,
		fn:     fn,
		onErr:  onErr,
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
		parent: ws,
	}

	ws.mu.Lock()
	subs, ok := ws.subs[w.key]
	if !ok {
		subs = make(map[*watcher]struct{})
		ws.subs[w.key] = subs
	}
	subs[w] = struct{}{}
	ws.mu.Unlock()

	w.signal()
	go w.run(ctx)
	return w
}

// Notify signals every subscriber of the document.
func (ws *Watchers) Notify(collection, id string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for w := range ws.subs[watchKey(collection, id)] {
		w.signal()
	}
}

// CloseAll cancels every subscription.
func (ws *Watchers) CloseAll() {
	ws.mu.Lock()
	all := make([]*watcher, 0)
	for _, subs := range ws.subs {
		for w := range subs {
			all = append(all, w)
		}
	}
	ws.mu.Unlock()

	for _, w := range all {
		w.Unsubscribe()
	}
}

// Len returns the number of live subscriptions.
func (ws *Watchers) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	var n int
	for _, subs := range ws.subs {
		n += len(subs)
	}
	return n
}

func (w *watcher) signal() {
	select {
	case w.notify <- struct{}{}:
	default: // a signal is already pending
	}
}

func (w *watcher) run(ctx context.Context) {
	for {
		select {
		case <-w.done:
			return
		case <-ctx.Done():
			w.Unsubscribe()
			return
		case <-w.notify:
			doc, exists, err := w.load(ctx)
			select {
			case <-w.done:
				return
			default:
			}
			if err != nil {
				if w.onErr != nil {
					w.onErr(err)
				}
				continue
			}
			w.fn(doc, exists)
		}
	}
}

func (w *watcher) Unsubscribe() {
	w.once.Do(func() {
		close(w.done)

		w.parent.mu.Lock()
		defer w.parent.mu.Unlock()
		if subs, ok := w.parent.subs[w.key]; ok {
			delete(subs, w)
			if len(subs) == 0 {
				delete(w.parent.subs, w.key)
			}
		}
	})
}
