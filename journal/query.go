package journal

import "fmt"

// ListRuns returns run summaries, most recent first.
func (j *SQLiteJournal) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := j.db.Query(`
		SELECT run_id, created, symbol, instrument, start_time, end_time,
		       initial_capital, final_equity, trades, wins, losses,
		       win_rate, sharpe_ratio, max_drawdown, total_return, profit_factor, net_pl, total_costs
		FROM runs ORDER BY created DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Created, &r.Symbol, &r.Instrument, &r.Start, &r.End,
			&r.InitialCapital, &r.FinalEquity, &r.Trades, &r.Wins, &r.Losses,
			&r.WinRate, &r.SharpeRatio, &r.MaxDrawdown, &r.TotalReturn, &r.ProfitFactor, &r.NetPnL, &r.TotalCosts); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetRun loads one run summary by ID.
func (j *SQLiteJournal) GetRun(runID string) (RunRecord, error) {
	row := j.db.QueryRow(`
		SELECT run_id, created, symbol, instrument, start_time, end_time,
		       initial_capital, final_equity, trades, wins, losses,
		       win_rate, sharpe_ratio, max_drawdown, total_return, profit_factor, net_pl, total_costs
		FROM runs WHERE run_id = ?`, runID)

	var r RunRecord
	err := row.Scan(&r.RunID, &r.Created, &r.Symbol, &r.Instrument, &r.Start, &r.End,
		&r.InitialCapital, &r.FinalEquity, &r.Trades, &r.Wins, &r.Losses,
		&r.WinRate, &r.SharpeRatio, &r.MaxDrawdown, &r.TotalReturn, &r.ProfitFactor, &r.NetPnL, &r.TotalCosts)
	if err != nil {
		return RunRecord{}, fmt.Errorf("get run %q: %w", runID, err)
	}
	return r, nil
}

// ListTradesByRun returns a run's closed trades in close order.
func (j *SQLiteJournal) ListTradesByRun(runID string) ([]TradeRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, position_id, symbol, quantity, entry_price, exit_price,
		       entry_time, exit_time, gross_pl, costs, net_pl, return_pct, reason
		FROM trades WHERE run_id = ? ORDER BY exit_time, position_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var t TradeRecord
		if err := rows.Scan(&t.RunID, &t.PositionID, &t.Symbol, &t.Quantity, &t.EntryPrice, &t.ExitPrice,
			&t.EntryTime, &t.ExitTime, &t.GrossPnL, &t.Costs, &t.NetPnL, &t.ReturnPct, &t.Reason); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListEquityByRun returns a run's equity curve samples in time order.
func (j *SQLiteJournal) ListEquityByRun(runID string) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT run_id, time, equity FROM equity WHERE run_id = ? ORDER BY time`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var e EquityRecord
		if err := rows.Scan(&e.RunID, &e.Time, &e.Equity); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
