package value

import (
	"math"
	"strings"
)

// UnitPolicy decides how arithmetic treats operands with different units
type UnitPolicy int

const (
	// UnitsConvert converts between units of the same group, such as px
	// and in, and rejects the rest
	UnitsConvert UnitPolicy = iota
	// UnitsStrict rejects any two different units
	UnitsStrict
)

// ParseUnitPolicy maps "convert" or "strict" to a UnitPolicy
func ParseUnitPolicy(s string) (UnitPolicy, bool) {
	switch strings.ToLower(s) {
	case "", "convert":
		return UnitsConvert, true
	case "strict":
		return UnitsStrict, true
	}
	return UnitsConvert, false
}

func (p UnitPolicy) String() string {
	if p == UnitsStrict {
		return "strict"
	}
	return "convert"
}

type unitInfo struct {
	group  string
	factor float64 // size of the unit in the group's base unit
}

var units = map[string]unitInfo{
	"px":   {"length", 1},
	"cm":   {"length", 96 / 2.54},
	"mm":   {"length", 96 / 25.4},
	"q":    {"length", 96 / 101.6},
	"in":   {"length", 96},
	"pt":   {"length", 96.0 / 72},
	"pc":   {"length", 16},
	"s":    {"time", 1},
	"ms":   {"time", 0.001},
	"deg":  {"angle", 1},
	"rad":  {"angle", 180 / math.Pi},
	"grad": {"angle", 0.9},
	"turn": {"angle", 360},
	"hz":   {"frequency", 1},
	"khz":  {"frequency", 1000},
	"dppx": {"resolution", 1},
	"dpi":  {"resolution", 1.0 / 96},
	"dpcm": {"resolution", 2.54 / 96},
}

// convertUnit expresses v in unit from as a quantity of unit to
func convertUnit(v float64, from, to string) (float64, bool) {
	f, ok := units[strings.ToLower(from)]
	if !ok {
		return 0, false
	}
	t, ok := units[strings.ToLower(to)]
	if !ok || t.group != f.group {
		return 0, false
	}
	return v * f.factor / t.factor, true
}
