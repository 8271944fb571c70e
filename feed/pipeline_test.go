package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rulebook/ledger"
)

var fixedNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func newTestPipeline() *Pipeline {
	return New(Options{
		StartingCapital: 10000,
		WeeklyGoal:      1000,
		LifetimeTarget:  10000,
		Now:             func() time.Time { return fixedNow },
	})
}

func rec(gross float64) ledger.TradeRecord {
	return ledger.TradeRecord{
		Date:         time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC),
		GrossPL:      gross,
		Quantity:     1,
		RulesAdhered: 3,
		Kind:         ledger.KindTrade,
	}
}

func next(t *testing.T, ch <-chan ledger.State) ledger.State {
	t.Helper()

	select {
	case st, ok := <-ch:
		require.True(t, ok)
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("no state published")
		return ledger.State{}
	}
}

func TestApplyWaitsForFirstSnapshot(t *testing.T) {
	p := newTestPipeline()

	_, ok := p.Apply(Goals{Weekly: 500, Lifetime: 5000})
	assert.False(t, ok)

	_, ok = p.Current()
	assert.False(t, ok)

	st, ok := p.Apply(Snapshot{Records: []ledger.TradeRecord{rec(250)}})
	require.True(t, ok)
	assert.InDelta(t, 50, st.WeeklyProgressPct, 1e-9)
	assert.InDelta(t, 5, st.LifetimeProgressPct, 1e-9)
}

func TestApplyReplacesInputs(t *testing.T) {
	p := newTestPipeline()

	st, _ := p.Apply(Snapshot{Records: []ledger.TradeRecord{rec(500), rec(-100)}})
	assert.Equal(t, []float64{10000, 10500, 10400}, st.Balances)

	// a new snapshot replaces the list rather than adding to it
	st, _ = p.Apply(Snapshot{Records: []ledger.TradeRecord{rec(500)}})
	assert.Equal(t, []float64{10000, 10500}, st.Balances)

	st, _ = p.Apply(Capital{Amount: 2000})
	assert.Equal(t, []float64{2000, 2500}, st.Balances)

	st, _ = p.Apply(Goals{Weekly: 250, Lifetime: 0})
	assert.InDelta(t, 100, st.WeeklyProgressPct, 1e-9)
	assert.Zero(t, st.LifetimeProgressPct)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, st, cur)
}

func TestRunPublishesInOrder(t *testing.T) {
	p := newTestPipeline()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates, stop := p.Subscribe()
	defer stop()

	events := make(chan Event)
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, events) }()

	events <- Snapshot{Records: []ledger.TradeRecord{rec(100)}}
	st := next(t, updates)
	assert.Equal(t, 10100.0, st.Balance)

	events <- Snapshot{Records: []ledger.TradeRecord{rec(100), rec(50)}}
	st = next(t, updates)
	assert.Equal(t, 10150.0, st.Balance)

	close(events)
	assert.NoError(t, <-done)
}

func TestRunStopsOnCancel(t *testing.T) {
	p := newTestPipeline()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, make(chan Event)) }()

	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSubscribeLatestWins(t *testing.T) {
	p := newTestPipeline()

	updates, stop := p.Subscribe()
	defer stop()

	for i := 1; i <= 5; i++ {
		recs := make([]ledger.TradeRecord, i)
		for k := range recs {
			recs[k] = rec(10)
		}
		p.Apply(Snapshot{Records: recs})
	}

	st := next(t, updates)
	assert.Equal(t, 5, st.RecordCount)

	select {
	case extra := <-updates:
		t.Fatalf("stale state queued: %d records", extra.RecordCount)
	default:
	}
}

func TestSubscribeReceivesCurrent(t *testing.T) {
	p := newTestPipeline()
	p.Apply(Snapshot{Records: []ledger.TradeRecord{rec(1)}})

	updates, stop := p.Subscribe()
	st := next(t, updates)
	assert.Equal(t, 1, st.RecordCount)

	stop()
	stop()
	_, ok := <-updates
	assert.False(t, ok)
}

func TestForward(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan []ledger.TradeRecord, 2)
	events := make(chan Event, 2)
	snapshots <- []ledger.TradeRecord{rec(1)}
	snapshots <- []ledger.TradeRecord{rec(1), rec(2)}
	close(snapshots)

	Forward(ctx, snapshots, events)

	require.Len(t, events, 2)
	first := (<-events).(Snapshot)
	second := (<-events).(Snapshot)
	assert.Len(t, first.Records, 1)
	assert.Len(t, second.Records, 2)
}
