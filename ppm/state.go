package ppm

import "fmt"

// PowerState is the framework-wide urgency state used to pick default limits.
type PowerState int

const (
	// PowerStateNone places no cluster restriction.
	PowerStateNone PowerState = iota
	// PowerStateLittleOnly keeps every cluster except cluster 0 powered off.
	PowerStateLittleOnly
)

var powerStateNames = map[PowerState]string{
	PowerStateNone:       "NONE",
	PowerStateLittleOnly: "LITTLE_ONLY",
}

func (s PowerState) String() string {
	if name, ok := powerStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("PowerState(%d)", int(s))
}

// MarshalYAML renders the state by name.
func (s PowerState) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// Mode is the framework operating mode.
type Mode int

const (
	ModeLowPower Mode = iota
	ModeJustMake
	ModePerformance
)

var modeNames = map[Mode]string{
	ModeLowPower:    "LOW_POWER",
	ModeJustMake:    "JUST_MAKE",
	ModePerformance: "PERFORMANCE",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps a mode name to its Mode.
func ParseMode(name string) (Mode, error) {
	for m, n := range modeNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown ppm mode %q", name)
}

// Priority orders policies inside the framework. A lower value wins.
type Priority int

const (
	PriorityHighest         Priority = 0x00
	PriorityPowerBudgetBase Priority = 0x10
	PriorityPerformanceBase Priority = 0x40
	PriorityUserSpecified   Priority = 0x80
	PriorityLowest          Priority = 0xFF
)

// Relation selects the rounding direction of a frequency-to-index lookup.
type Relation int

const (
	// RelationLow picks the lowest table frequency at or above the target.
	RelationLow Relation = iota
	// RelationHigh picks the highest table frequency at or below the target.
	RelationHigh
)
