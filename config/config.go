package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/niveshlab/nivesh/backtest"
	"github.com/niveshlab/nivesh/costs"
	"github.com/niveshlab/nivesh/market"
	"github.com/niveshlab/nivesh/sizing"
)

// Config represents the complete backtest run configuration.
type Config struct {
	Account AccountConfig `json:"account" yaml:"account"`
	Engine  EngineConfig  `json:"engine" yaml:"engine"`
	Sizing  SizingConfig  `json:"sizing" yaml:"sizing"`
	Costs   CostsConfig   `json:"costs" yaml:"costs"`
	Signals SignalsConfig `json:"signals" yaml:"signals"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
}

type AccountConfig struct {
	Capital float64 `json:"capital" yaml:"capital"`
}

type EngineConfig struct {
	Symbol           string  `json:"symbol" yaml:"symbol"`
	Instrument       string  `json:"instrument" yaml:"instrument"` // equity | fno
	StopLossPct      float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TargetPct        float64 `json:"target_pct" yaml:"target_pct"`
	MaxHoldBars      int     `json:"max_hold_bars" yaml:"max_hold_bars"`
	MaxOpenPositions int     `json:"max_open_positions" yaml:"max_open_positions"`
	ExitPriority     string  `json:"exit_priority" yaml:"exit_priority"` // stop-first | target-first
	OrderType        string  `json:"order_type" yaml:"order_type"`       // delivery | intraday
	VolatilityIndex  float64 `json:"volatility_index" yaml:"volatility_index"`
	CloseEnd         bool    `json:"close_end" yaml:"close_end"`
}

type SizingConfig struct {
	MinTrades            int                `json:"min_trades" yaml:"min_trades"`
	DefaultFraction      float64            `json:"default_fraction" yaml:"default_fraction"`
	Damping              float64            `json:"damping" yaml:"damping"`
	ProfitBands          []ProfitBandConfig `json:"profit_bands,omitempty" yaml:"profit_bands,omitempty"`
	EquityCap            float64            `json:"equity_cap" yaml:"equity_cap"`
	FNOCap               float64            `json:"fno_cap" yaml:"fno_cap"`
	PortfolioRiskCeiling float64            `json:"portfolio_risk_ceiling" yaml:"portfolio_risk_ceiling"`
}

type ProfitBandConfig struct {
	MinProfitPct float64 `json:"min_profit_pct" yaml:"min_profit_pct"`
	Multiplier   float64 `json:"multiplier" yaml:"multiplier"`
}

type CostsConfig struct {
	// Model selects the cost model: "schedule" (Indian fee stack) or "zero".
	Model string `json:"model" yaml:"model"`
}

type SignalsConfig struct {
	Generator  string `json:"generator" yaml:"generator"` // ema-cross
	FastPeriod int    `json:"fast_period" yaml:"fast_period"`
	SlowPeriod int    `json:"slow_period" yaml:"slow_period"`
}

type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // sqlite | csv | none
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	RunsFile   string `json:"runs_file,omitempty" yaml:"runs_file,omitempty"`
	TradesFile string `json:"trades_file,omitempty" yaml:"trades_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension).
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.Capital <= 0 {
		return fmt.Errorf("account.capital must be positive")
	}
	if c.Engine.Symbol == "" {
		return fmt.Errorf("engine.symbol is required")
	}
	if _, err := market.ParseInstrument(c.Engine.Instrument); err != nil {
		return fmt.Errorf("engine.instrument: %w", err)
	}
	if c.Engine.StopLossPct <= 0 || c.Engine.StopLossPct >= 1 {
		return fmt.Errorf("engine.stop_loss_pct must be in (0, 1)")
	}
	if c.Engine.TargetPct <= 0 {
		return fmt.Errorf("engine.target_pct must be positive")
	}
	if c.Engine.MaxOpenPositions < 1 {
		return fmt.Errorf("engine.max_open_positions must be >= 1")
	}
	switch c.Engine.ExitPriority {
	case "", "stop-first", "target-first":
	default:
		return fmt.Errorf("engine.exit_priority must be 'stop-first' or 'target-first'")
	}
	switch c.Engine.OrderType {
	case "", "delivery", "intraday":
	default:
		return fmt.Errorf("engine.order_type must be 'delivery' or 'intraday'")
	}
	if c.Sizing.DefaultFraction <= 0 || c.Sizing.DefaultFraction > 1 {
		return fmt.Errorf("sizing.default_fraction must be in (0, 1]")
	}
	if c.Sizing.Damping <= 0 || c.Sizing.Damping > 1 {
		return fmt.Errorf("sizing.damping must be in (0, 1]")
	}
	if c.Sizing.PortfolioRiskCeiling <= 0 || c.Sizing.PortfolioRiskCeiling > 1 {
		return fmt.Errorf("sizing.portfolio_risk_ceiling must be in (0, 1]")
	}
	switch c.Costs.Model {
	case "", "schedule", "zero":
	default:
		return fmt.Errorf("costs.model must be 'schedule' or 'zero'")
	}
	switch c.Journal.Type {
	case "", "none":
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal.db_path required for sqlite journal")
		}
	case "csv":
		if c.Journal.RunsFile == "" || c.Journal.TradesFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal runs_file, trades_file and equity_file required for csv journal")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	s := sizing.DefaultConfig()

	bands := make([]ProfitBandConfig, 0, len(s.ProfitBands))
	for _, b := range s.ProfitBands {
		bands = append(bands, ProfitBandConfig{MinProfitPct: b.MinProfitPct, Multiplier: b.Multiplier})
	}

	return &Config{
		Account: AccountConfig{Capital: 100_000},
		Engine: EngineConfig{
			Symbol:           "RELIANCE",
			Instrument:       "equity",
			StopLossPct:      0.02,
			TargetPct:        0.04,
			MaxHoldBars:      0,
			MaxOpenPositions: 5,
			ExitPriority:     "stop-first",
			OrderType:        "delivery",
			VolatilityIndex:  15,
			CloseEnd:         true,
		},
		Sizing: SizingConfig{
			MinTrades:            s.MinTrades,
			DefaultFraction:      s.DefaultFraction,
			Damping:              s.Damping,
			ProfitBands:          bands,
			EquityCap:            s.EquityCap,
			FNOCap:               s.FNOCap,
			PortfolioRiskCeiling: s.PortfolioRiskCeiling,
		},
		Costs:   CostsConfig{Model: "schedule"},
		Signals: SignalsConfig{Generator: "ema-cross", FastPeriod: 20, SlowPeriod: 50},
		Journal: JournalConfig{Type: "sqlite", DBPath: "./backtests.sqlite"},
	}
}

// BacktestConfig materializes the backtest.Config for this run.
func (c *Config) BacktestConfig() (backtest.Config, error) {
	instr, err := market.ParseInstrument(c.Engine.Instrument)
	if err != nil {
		return backtest.Config{}, err
	}

	prio := backtest.StopFirst
	if c.Engine.ExitPriority == "target-first" {
		prio = backtest.TargetFirst
	}

	typ := costs.Delivery
	if c.Engine.OrderType == "intraday" {
		typ = costs.Intraday
	}

	return backtest.Config{
		Symbol:           c.Engine.Symbol,
		Instrument:       instr,
		InitialCapital:   c.Account.Capital,
		StopLossPct:      c.Engine.StopLossPct,
		TargetPct:        c.Engine.TargetPct,
		MaxHoldBars:      c.Engine.MaxHoldBars,
		MaxOpenPositions: c.Engine.MaxOpenPositions,
		ExitPriority:     prio,
		OrderType:        typ,
		VolatilityIndex:  c.Engine.VolatilityIndex,
		CloseEnd:         c.Engine.CloseEnd,
	}, nil
}

// SizerConfig materializes the sizing.Config for this run.
func (c *Config) SizerConfig() sizing.Config {
	bands := make([]sizing.ProfitBand, 0, len(c.Sizing.ProfitBands))
	for _, b := range c.Sizing.ProfitBands {
		bands = append(bands, sizing.ProfitBand{MinProfitPct: b.MinProfitPct, Multiplier: b.Multiplier})
	}

	return sizing.Config{
		MinTrades:            c.Sizing.MinTrades,
		DefaultFraction:      c.Sizing.DefaultFraction,
		Damping:              c.Sizing.Damping,
		ProfitBands:          bands,
		EquityCap:            c.Sizing.EquityCap,
		FNOCap:               c.Sizing.FNOCap,
		PortfolioRiskCeiling: c.Sizing.PortfolioRiskCeiling,
	}
}

// CostModel materializes the configured cost model.
func (c *Config) CostModel() costs.Model {
	if c.Costs.Model == "zero" {
		return costs.Zero{}
	}
	return costs.NewSchedule()
}
