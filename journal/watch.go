package journal

import (
	"context"
	"fmt"
	"sync"

	"github.com/rustyeddy/rulebook/ledger"
)

// hub fans record snapshots out to watchers. Each watcher channel holds
// at most one pending snapshot; a newer one replaces it.
type hub struct {
	mu       sync.Mutex
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
	watchers map[string]map[*watcher]struct{}
}

type watcher struct {
	ch chan []ledger.TradeRecord
}

func newHub() *hub {
	return &hub{
		done:     make(chan struct{}),
		watchers: map[string]map[*watcher]struct{}{},
	}
}

// Watch delivers userID's full record list now and again after every
// insert, delete or reset. The channel closes when ctx ends or the
// journal is closed.
func (j *SQLite) Watch(ctx context.Context, userID string) (<-chan []ledger.TradeRecord, error) {
	w := &watcher{ch: make(chan []ledger.TradeRecord, 1)}

	h := j.hub
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, fmt.Errorf("journal closed")
	}
	recs, err := j.ListRecords(ctx, userID)
	if err != nil {
		h.mu.Unlock()
		return nil, fmt.Errorf("initial snapshot: %w", err)
	}
	if h.watchers[userID] == nil {
		h.watchers[userID] = map[*watcher]struct{}{}
	}
	h.watchers[userID][w] = struct{}{}
	w.ch <- recs
	h.wg.Add(1)
	h.mu.Unlock()

	go func() {
		defer h.wg.Done()
		select {
		case <-ctx.Done():
			h.remove(userID, w)
		case <-h.done:
		}
	}()

	return w.ch, nil
}

// notify re-reads userID's records and pushes them to every watcher.
// Holding the hub lock across the read keeps snapshots in commit order.
func (j *SQLite) notify(ctx context.Context, userID string) {
	h := j.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.watchers[userID]) == 0 {
		return
	}
	recs, err := j.ListRecords(context.WithoutCancel(ctx), userID)
	if err != nil {
		j.log.Warn().Err(err).Str("user", userID).Msg("watch refresh failed")
		return
	}
	for w := range h.watchers[userID] {
		w.offer(recs)
	}
}

func (w *watcher) offer(recs []ledger.TradeRecord) {
	select {
	case w.ch <- recs:
		return
	default:
	}
	// drop the stale snapshot
	select {
	case <-w.ch:
	default:
	}
	select {
	case w.ch <- recs:
	default:
	}
}

func (h *hub) remove(userID string, w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.watchers[userID]
	if !ok {
		return
	}
	if _, ok := set[w]; !ok {
		return
	}
	delete(set, w)
	if len(set) == 0 {
		delete(h.watchers, userID)
	}
	close(w.ch)
}

// closeAll closes every watcher channel and waits for the per-watch
// goroutines to exit.
func (h *hub) closeAll() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	close(h.done)
	for userID, set := range h.watchers {
		for w := range set {
			close(w.ch)
		}
		delete(h.watchers, userID)
	}
	h.mu.Unlock()

	h.wg.Wait()
}
