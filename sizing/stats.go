package sizing

// Stats is the rolling performance aggregate for one strategy.
//
// It is updated after each trade closes and feeds the *next* sizing decision;
// a trade never influences its own size.
type Stats struct {
	Trades     int
	Wins       int
	Losses     int
	WinPctSum  float64 // sum of winning return fractions (0.05 = 5%)
	LossPctSum float64 // sum of losing return fractions, stored positive
}

// Record folds one closed trade's return fraction into the aggregate.
func (s *Stats) Record(returnPct float64) {
	s.Trades++
	if returnPct > 0 {
		s.Wins++
		s.WinPctSum += returnPct
	} else if returnPct < 0 {
		s.Losses++
		s.LossPctSum += -returnPct
	} else {
		// Flat trades count toward the total but neither side.
	}
}

// WinRate returns wins/trades, 0 with no history.
func (s *Stats) WinRate() float64 {
	if s.Trades == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Trades)
}

// AvgWinPct returns the mean winning return fraction, 0 with no wins.
func (s *Stats) AvgWinPct() float64 {
	if s.Wins == 0 {
		return 0
	}
	return s.WinPctSum / float64(s.Wins)
}

// AvgLossPct returns the mean losing return fraction as a positive number,
// 0 with no losses.
func (s *Stats) AvgLossPct() float64 {
	if s.Losses == 0 {
		return 0
	}
	return s.LossPctSum / float64(s.Losses)
}
