// Package materials holds the preservation profile for each material class:
// optimal temperature and humidity ranges, how sensitive the material is to
// each decay mechanism, and the special regimes some materials need.
package materials

// GeneralKey is the profile every unknown key falls back to.
const GeneralKey = "general"

// Priority is how sensitive a material is to one decay mechanism.
type Priority string

const (
	PriorityNone     Priority = "none"
	PriorityLow      Priority = "low"
	PriorityModerate Priority = "moderate"
	PriorityHigh     Priority = "high"
	PriorityVeryHigh Priority = "very-high"
	PriorityCritical Priority = "critical"
)

// Valid reports whether p is one of the known levels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityModerate, PriorityHigh, PriorityVeryHigh, PriorityCritical:
		return true
	default:
		return false
	}
}

// Strict reports whether p is very-high or critical.
func (p Priority) Strict() bool {
	return p == PriorityVeryHigh || p == PriorityCritical
}

// Range is an inclusive interval.
type Range struct {
	Min float64 `yaml:"min" json:"min"`
	Max float64 `yaml:"max" json:"max"`
}

// Contains reports whether min <= v <= max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Midpoint returns the centre of the range.
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// Width returns max - min.
func (r Range) Width() float64 {
	return r.Max - r.Min
}

// Priorities holds one Priority per decay axis.
type Priorities struct {
	NaturalAging    Priority `yaml:"naturalAging" json:"natural_aging"`
	MechanicalDecay Priority `yaml:"mechanicalDecay" json:"mechanical_decay"`
	MoldGrowth      Priority `yaml:"moldGrowth" json:"mold_growth"`
	MetalCorrosion  Priority `yaml:"metalCorrosion" json:"metal_corrosion"`
}

// Profile describes one material class. Profiles are shared by pointer from
// a Table and must not be modified.
type Profile struct {
	Key         string     `yaml:"key" json:"key"`
	Name        string     `yaml:"name" json:"name"`
	Description string     `yaml:"description" json:"description"`
	OptimalTemp Range      `yaml:"optimalTemp" json:"optimal_temp"`
	OptimalRH   Range      `yaml:"optimalRH" json:"optimal_rh"`
	Priorities  Priorities `yaml:"priorities" json:"priorities"`
	Sources     []string   `yaml:"sources" json:"sources,omitempty"`
	Notes       string     `yaml:"notes" json:"notes,omitempty"`

	// ColdStorage switches natural aging to the cold-storage scale.
	ColdStorage bool `yaml:"coldStorage" json:"cold_storage,omitempty"`
	// CriticalRHLow and CriticalRHHigh force a critical mechanical rating
	// when breached.
	CriticalRHLow  *float64 `yaml:"criticalRHLow" json:"critical_rh_low,omitempty"`
	CriticalRHHigh *float64 `yaml:"criticalRHHigh" json:"critical_rh_high,omitempty"`
	// VeryLowRH selects the dry-storage mechanical and corrosion curves.
	VeryLowRH bool `yaml:"veryLowRH" json:"very_low_rh,omitempty"`
	// PermanentStorageTemp is the long-term target where it differs from
	// the working range.
	PermanentStorageTemp *Range `yaml:"permanentStorageTemp" json:"permanent_storage_temp,omitempty"`
}
