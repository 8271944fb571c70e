// Package feed re-aggregates a ledger every time its inputs change.
//
// A Pipeline consumes events one at a time on a single goroutine. Each
// event replaces one input (the record list, the goals or the starting
// capital) and triggers a full ledger.Aggregate; the result replaces the
// previously published State in one step. Two snapshots are never merged.
package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/rulebook/ledger"
)

// Event changes one pipeline input.
type Event interface {
	apply(in *inputs)
}

// Snapshot carries the complete current record list, ordered by CreatedAt.
type Snapshot struct {
	Records []ledger.TradeRecord
}

// Goals replaces both goal thresholds.
type Goals struct {
	Weekly   float64
	Lifetime float64
}

// Capital replaces the starting capital.
type Capital struct {
	Amount float64
}

func (e Snapshot) apply(in *inputs) {
	in.records = e.Records
	in.loaded = true
}

func (e Goals) apply(in *inputs) {
	in.weekly = e.Weekly
	in.lifetime = e.Lifetime
}

func (e Capital) apply(in *inputs) {
	in.capital = e.Amount
}

type inputs struct {
	records  []ledger.TradeRecord
	loaded   bool
	capital  float64
	weekly   float64
	lifetime float64
}

// Options seeds a Pipeline.
type Options struct {
	StartingCapital float64
	WeeklyGoal      float64
	LifetimeTarget  float64

	// Now defaults to time.Now.
	Now func() time.Time
	// Logger defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Pipeline turns input events into published ledger states.
type Pipeline struct {
	in  inputs
	now func() time.Time
	log zerolog.Logger

	state atomic.Pointer[ledger.State]

	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

type subscriber struct {
	ch chan ledger.State
}

func New(opts Options) *Pipeline {
	p := &Pipeline{
		in: inputs{
			capital:  opts.StartingCapital,
			weekly:   opts.WeeklyGoal,
			lifetime: opts.LifetimeTarget,
		},
		now:  opts.Now,
		log:  zerolog.Nop(),
		subs: map[*subscriber]struct{}{},
	}
	if p.now == nil {
		p.now = time.Now
	}
	if opts.Logger != nil {
		p.log = *opts.Logger
	}
	return p
}

// Run applies events until ctx is done or events is closed. It returns
// ctx.Err() on cancellation and nil when the channel closes.
func (p *Pipeline) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.Apply(ev)
		}
	}
}

// Apply handles a single event synchronously. Nothing is published until
// the first Snapshot has arrived. Apply must only be called from the
// goroutine that owns the pipeline.
func (p *Pipeline) Apply(ev Event) (ledger.State, bool) {
	ev.apply(&p.in)
	if !p.in.loaded {
		return ledger.State{}, false
	}

	st := ledger.Aggregate(p.in.records, p.in.capital, p.in.weekly, p.in.lifetime, p.now())
	p.state.Store(&st)

	p.log.Debug().
		Int("records", st.RecordCount).
		Float64("balance", st.Balance).
		Float64("weekly_pct", st.WeeklyProgressPct).
		Msg("ledger recomputed")

	p.publish(st)
	return st, true
}

// Current returns the latest published State. Callers must treat its
// Balances slice as read-only.
func (p *Pipeline) Current() (ledger.State, bool) {
	st := p.state.Load()
	if st == nil {
		return ledger.State{}, false
	}
	return *st, true
}

// Subscribe returns a channel that always holds the newest State not yet
// read. A State already published is delivered immediately. cancel
// closes the channel.
func (p *Pipeline) Subscribe() (<-chan ledger.State, func()) {
	s := &subscriber{ch: make(chan ledger.State, 1)}

	p.mu.Lock()
	p.subs[s] = struct{}{}
	if st := p.state.Load(); st != nil {
		s.ch <- *st
	}
	p.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, s)
			close(s.ch)
			p.mu.Unlock()
		})
	}
	return s.ch, cancel
}

func (p *Pipeline) publish(st ledger.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for s := range p.subs {
		select {
		case s.ch <- st:
			continue
		default:
		}
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- st:
		default:
		}
	}
}

// Forward turns record snapshots into Snapshot events until snapshots
// closes or ctx ends.
func Forward(ctx context.Context, snapshots <-chan []ledger.TradeRecord, events chan<- Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case recs, ok := <-snapshots:
			if !ok {
				return
			}
			select {
			case events <- Snapshot{Records: recs}:
			case <-ctx.Done():
				return
			}
		}
	}
}
