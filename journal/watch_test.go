package journal

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rulebook/ledger"
)

func receive(t *testing.T, ch <-chan []ledger.TradeRecord) []ledger.TradeRecord {
	t.Helper()

	select {
	case recs, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return recs
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
		return nil
	}
}

func TestWatchDeliversSnapshots(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProfile(t, j)

	first, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, GrossPL: 100})
	require.NoError(t, err)

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)

	recs := receive(t, ch)
	require.Len(t, recs, 1)
	assert.Equal(t, first.ID, recs[0].ID)

	second, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, GrossPL: -40})
	require.NoError(t, err)

	recs = receive(t, ch)
	require.Len(t, recs, 2)
	assert.Equal(t, second.ID, recs[1].ID)

	require.NoError(t, j.DeleteRecord(ctx, p.ID, first.ID))

	recs = receive(t, ch)
	require.Len(t, recs, 1)
	assert.Equal(t, second.ID, recs[0].ID)
}

func TestWatchLatestWins(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProfile(t, j)

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)

	// nobody reads while five records land
	for i := 0; i < 5; i++ {
		_, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, GrossPL: float64(i)})
		require.NoError(t, err)
	}

	recs := receive(t, ch)
	assert.Len(t, recs, 5)

	select {
	case extra := <-ch:
		t.Fatalf("unexpected queued snapshot of %d records", len(extra))
	default:
	}
}

func TestWatchIgnoresOtherUsers(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProfile(t, j)
	other, err := j.CreateProfile(ctx, "Ravi", "ravi@example.com", "pw", 0)
	require.NoError(t, err)

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, receive(t, ch))

	_, err = j.AddRecord(ctx, ledger.TradeRecord{UserID: other.ID, GrossPL: 1})
	require.NoError(t, err)

	select {
	case recs := <-ch:
		t.Fatalf("unexpected snapshot %v", recs)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx, cancel := context.WithCancel(context.Background())
	p := newTestProfile(t, j)

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)
	receive(t, ch)

	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestWatchClosesOnJournalClose(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProfile(t, j)

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)
	receive(t, ch)

	require.NoError(t, j.Close())

	_, ok := <-ch
	assert.False(t, ok)

	_, err = j.Watch(ctx, p.ID)
	assert.Error(t, err)
}

func TestWatchDeliversEmptySnapshotAfterReset(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProfile(t, j)

	for _, pl := range []float64{100, -30} {
		_, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, GrossPL: pl})
		require.NoError(t, err)
	}

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, receive(t, ch), 2)

	n, err := j.ResetRecords(ctx, p.ID, "s3cret")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	recs := receive(t, ch)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestCloseEndsUncancelledWatchers(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	p := newTestProfile(t, j)

	// never cancelled
	ch, err := j.Watch(context.Background(), p.ID)
	require.NoError(t, err)
	receive(t, ch)

	closed := make(chan error, 1)
	go func() { closed <- j.Close() }()

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return")
	}

	_, ok := <-ch
	assert.False(t, ok)
}

func TestNotifyLogsRefreshFailure(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newTestProfile(t, j)

	buf := new(bytes.Buffer)
	WithLogger(zerolog.New(buf))(j)

	ch, err := j.Watch(ctx, p.ID)
	require.NoError(t, err)
	receive(t, ch)

	require.NoError(t, j.db.Close())
	j.notify(ctx, p.ID)

	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "watch refresh failed")
	assert.Contains(t, buf.String(), p.ID)

	select {
	case recs := <-ch:
		t.Fatalf("unexpected snapshot %v", recs)
	default:
	}

	j.Close()
}
