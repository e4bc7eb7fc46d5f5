package market

import "fmt"

// Instrument is a closed enumeration of instrument classes.
//
// The sizing caps and fee schedule both dispatch on it; using a typed enum
// instead of raw strings means a typo is a compile error, not a silent
// misprice.
type Instrument int

const (
	Equity Instrument = iota
	FNO               // futures and options
)

func (i Instrument) String() string {
	switch i {
	case Equity:
		return "equity"
	case FNO:
		return "fno"
	}
	return fmt.Sprintf("Instrument(%d)", int(i))
}

// ParseInstrument maps config/CLI strings onto the enum.
func ParseInstrument(s string) (Instrument, error) {
	switch s {
	case "equity", "EQUITY", "eq":
		return Equity, nil
	case "fno", "FNO", "derivative":
		return FNO, nil
	}
	return Equity, fmt.Errorf("unknown instrument class %q (supported: equity, fno)", s)
}

// MarshalYAML / UnmarshalYAML keep instrument classes readable in config files.
func (i Instrument) MarshalYAML() (interface{}, error) {
	return i.String(), nil
}

func (i *Instrument) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	v, err := ParseInstrument(s)
	if err != nil {
		return err
	}
	*i = v
	return nil
}
