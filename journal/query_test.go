package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/rulebook/ledger"
)

func TestGetRecord(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()
	p := newTestProfile(t, j)

	expected, err := j.AddRecord(ctx, ledger.TradeRecord{
		UserID:       p.ID,
		Date:         date(2024, 4, 10),
		GrossPL:      375,
		Brokerage:    20,
		Tax:          4.5,
		Quantity:     3,
		RulesAdhered: 2,
		Notes:        "trend",
	})
	require.NoError(t, err)

	actual, err := j.GetRecord(ctx, expected.ID)
	require.NoError(t, err)

	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.UserID, actual.UserID)
	assert.True(t, actual.Date.Equal(expected.Date))
	assert.True(t, actual.CreatedAt.Equal(expected.CreatedAt))
	assert.InDelta(t, expected.GrossPL, actual.GrossPL, 1e-9)
	assert.InDelta(t, expected.Brokerage, actual.Brokerage, 1e-9)
	assert.InDelta(t, expected.Tax, actual.Tax, 1e-9)
	assert.Equal(t, expected.Quantity, actual.Quantity)
	assert.Equal(t, expected.RulesAdhered, actual.RulesAdhered)
	assert.Equal(t, expected.Kind, actual.Kind)
	assert.Equal(t, expected.Notes, actual.Notes)
}

func TestGetRecordNotFound(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	_, err := j.GetRecord(context.Background(), "nonexistent")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "not found")
}

func TestListRecordsInsertionOrder(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()
	p := newTestProfile(t, j)

	// dates deliberately out of order; creation order wins
	days := []time.Time{date(2024, 5, 15), date(2024, 5, 1), date(2024, 5, 9)}
	var ids []string
	for i, d := range days {
		rec, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, Date: d, GrossPL: float64(i + 1)})
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	recs, err := j.ListRecords(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for i, r := range recs {
		assert.Equal(t, ids[i], r.ID)
		assert.True(t, r.Date.Equal(days[i]))
	}
	assert.True(t, recs[0].CreatedAt.Before(recs[1].CreatedAt))
}

func TestListRecordsEmpty(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()

	recs, err := j.ListRecords(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestListRecordsBetween(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()
	p := newTestProfile(t, j)

	for _, d := range []time.Time{
		date(2024, 5, 12),
		date(2024, 5, 13),
		date(2024, 5, 15),
		date(2024, 5, 20),
	} {
		_, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, Date: d, GrossPL: 1})
		require.NoError(t, err)
	}

	recs, err := j.ListRecordsBetween(ctx, p.ID, date(2024, 5, 13), date(2024, 5, 20))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, date(2024, 5, 13), recs[0].Date)
	assert.Equal(t, date(2024, 5, 15), recs[1].Date)

	// an end inside a day includes that day
	recs, err = j.ListRecordsBetween(ctx, p.ID, date(2024, 5, 20), date(2024, 5, 20).Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = j.ListRecordsBetween(ctx, p.ID, date(2024, 6, 1), date(2024, 6, 2))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestListedRecordsAggregate(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	ctx := context.Background()
	p := newTestProfile(t, j)

	_, err := j.AddRecord(ctx, ledger.TradeRecord{UserID: p.ID, Date: date(2024, 5, 13), GrossPL: 1000})
	require.NoError(t, err)
	_, err = j.AddRecord(ctx, ledger.NewWithdrawal(date(2024, 5, 14), 500, "").WithUser(p.ID))
	require.NoError(t, err)

	recs, err := j.ListRecords(ctx, p.ID)
	require.NoError(t, err)

	st := ledger.Aggregate(recs, p.StartingCapital, 1000, 5000, time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, []float64{10000, 11000, 10500}, st.Balances)
	assert.InDelta(t, 1000, st.NetTotal, 1e-9)
	assert.InDelta(t, 1.0, st.WinRate, 1e-9)
}
