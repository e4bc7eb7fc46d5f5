package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niveshlab/nivesh/analytics"
	"github.com/niveshlab/nivesh/backtest"
	"github.com/niveshlab/nivesh/ledger"
	"github.com/niveshlab/nivesh/market"
)

var jt0 = time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)

func sampleResult() *backtest.Result {
	return &backtest.Result{
		Symbol:         "RELIANCE",
		Instrument:     market.Equity,
		Start:          jt0,
		End:            jt0.AddDate(0, 0, 2),
		InitialCapital: 100_000,
		FinalCash:      100_150,
		FinalEquity:    100_150,
		Trades: []ledger.Trade{
			{
				PositionID: "P-000001",
				Symbol:     "RELIANCE",
				Quantity:   50,
				EntryTime:  jt0,
				EntryPrice: 100,
				ExitTime:   jt0.AddDate(0, 0, 1),
				ExitPrice:  104,
				GrossPnL:   200,
				Costs:      50,
				NetPnL:     150,
				ReturnPct:  0.03,
				Reason:     ledger.ReasonTarget,
			},
		},
		Equity: []ledger.EquityPoint{
			{Time: jt0, Equity: 100_000},
			{Time: jt0.AddDate(0, 0, 1), Equity: 100_150},
			{Time: jt0.AddDate(0, 0, 2), Equity: 100_150},
		},
		Metrics: analytics.Metrics{
			Trades: 1, Wins: 1, WinRate: 1,
			NetPnL: 150, TotalCosts: 50, TotalReturn: 0.0015,
		},
	}
}

func newTestSQLite(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestSQLite_RecordResultRoundtrip(t *testing.T) {
	j := newTestSQLite(t)
	res := sampleResult()

	require.NoError(t, RecordResult(j, "run-1", jt0, res))

	run, err := j.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE", run.Symbol)
	assert.Equal(t, "equity", run.Instrument)
	assert.Equal(t, 1, run.Trades)
	assert.InDelta(t, 100_150, run.FinalEquity, 1e-9)
	assert.InDelta(t, 150, run.NetPnL, 1e-9)
	assert.True(t, run.Start.Equal(res.Start))

	trades, err := j.ListTradesByRun("run-1")
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "P-000001", trades[0].PositionID)
	assert.Equal(t, int64(50), trades[0].Quantity)
	assert.Equal(t, string(ledger.ReasonTarget), trades[0].Reason)
	assert.InDelta(t, 0.03, trades[0].ReturnPct, 1e-9)

	curve, err := j.ListEquityByRun("run-1")
	require.NoError(t, err)
	require.Len(t, curve, 3)
	assert.InDelta(t, 100_000, curve[0].Equity, 1e-9)
	assert.InDelta(t, 100_150, curve[2].Equity, 1e-9)
}

func TestSQLite_ListRunsMostRecentFirst(t *testing.T) {
	j := newTestSQLite(t)

	for i, id := range []string{"run-a", "run-b", "run-c"} {
		res := sampleResult()
		require.NoError(t, RecordResult(j, id, jt0.Add(time.Duration(i)*time.Hour), res))
	}

	runs, err := j.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-c", runs[0].RunID)
	assert.Equal(t, "run-b", runs[1].RunID)
}

func TestSQLite_GetRunMissing(t *testing.T) {
	j := newTestSQLite(t)

	_, err := j.GetRun("nope")
	assert.Error(t, err)
}

func TestSQLite_DuplicateRunIDRejected(t *testing.T) {
	j := newTestSQLite(t)

	require.NoError(t, RecordResult(j, "run-1", jt0, sampleResult()))
	assert.Error(t, RecordResult(j, "run-1", jt0, sampleResult()),
		"run_id is the primary key")
}
