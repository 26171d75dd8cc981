package risk

import (
	"math"

	"github.com/couchcryptid/collection-climate-etl/internal/materials"
)

// Analyzer scores environments against a profile table.
type Analyzer struct {
	table *materials.Table
}

// NewAnalyzer returns an Analyzer over table. A nil table selects
// materials.Default().
func NewAnalyzer(table *materials.Table) *Analyzer {
	if table == nil {
		table = materials.Default()
	}
	return &Analyzer{table: table}
}

// Table returns the profile table the analyzer reads from.
func (a *Analyzer) Table() *materials.Table {
	return a.table
}

// AnalyzeForMaterial looks up materialType (falling back to the general
// profile) and scores the four axes.
func (a *Analyzer) AnalyzeForMaterial(tempF, rh, dewPointF float64, materialType string) Assessment {
	return Analyze(tempF, rh, dewPointF, a.table.Lookup(materialType))
}

// Analyze scores temperature (°F), relative humidity (%) and dew point (°F)
// against profile. It is a pure function of its arguments.
func Analyze(tempF, rh, dewPointF float64, profile *materials.Profile) Assessment {
	return Assessment{
		NaturalAging:    NaturalAging(tempF, profile),
		MechanicalDecay: MechanicalDecay(rh, profile),
		MoldGrowth:      MoldGrowth(tempF, rh, profile),
		MetalCorrosion:  MetalCorrosion(dewPointF, rh, profile),
	}
}

// NaturalAging rates chemical decay driven by temperature.
func NaturalAging(tempF float64, p *materials.Profile) Rating {
	lo, hi := p.OptimalTemp.Min, p.OptimalTemp.Max

	switch {
	case p.ColdStorage:
		switch {
		case tempF <= 40:
			return rate(95, "Excellent", ColorExcellent)
		case tempF <= 50:
			return rate(70, "Acceptable (Short-term)", ColorFair)
		case tempF <= 65:
			return rate(40, "High Risk", ColorHigh)
		default:
			return rate(10, "Critical - Rapid Degradation", ColorCritical)
		}

	case p.Priorities.NaturalAging.Strict():
		switch {
		case tempF <= lo+2:
			return rate(95, "Excellent", ColorExcellent)
		case tempF <= hi:
			return rate(85, "Good", ColorGood)
		case tempF <= hi+3:
			return rate(65, "Fair", ColorFair)
		case tempF <= hi+6:
			return rate(40, "High Risk", ColorHigh)
		default:
			return rate(15, "Critical Risk", ColorCritical)
		}

	default:
		switch {
		case tempF < lo:
			return rate(90, "Excellent (Cool)", ColorExcellent)
		case tempF <= hi:
			return rate(85, "Good", ColorGood)
		case tempF <= 72:
			return rate(70, "Fair", ColorFair)
		case tempF <= 76:
			return rate(50, "Moderate Risk", ColorModerate)
		case tempF <= 80:
			return rate(30, "High Risk", ColorHigh)
		default:
			return rate(10, "Critical Risk", ColorCritical)
		}
	}
}

// MechanicalDecay rates dimensional stress driven by relative humidity.
func MechanicalDecay(rh float64, p *materials.Profile) Rating {
	if p.CriticalRHLow != nil && rh < *p.CriticalRHLow {
		return rate(15, "Critical - Desiccation Risk", ColorCritical)
	}
	if p.CriticalRHHigh != nil && rh > *p.CriticalRHHigh {
		return rate(15, "Critical - Degradation Risk", ColorCritical)
	}

	if p.VeryLowRH {
		switch {
		case rh <= 15:
			return rate(95, "Excellent", ColorExcellent)
		case rh <= 35:
			return rate(80, "Good", ColorGood)
		case rh <= 50:
			return rate(50, "Moderate Risk", ColorModerate)
		default:
			return rate(20, "High Corrosion Risk", ColorHigh)
		}
	}

	opt := p.OptimalRH
	if opt.Contains(rh) {
		if math.Abs(rh-opt.Midpoint()) <= opt.Width()/4 {
			return rate(95, "Excellent", ColorExcellent)
		}
		return rate(85, "Good", ColorGood)
	}

	deviation := math.Max(math.Max(opt.Min-rh, rh-opt.Max), 0)
	switch {
	case deviation <= 5:
		return rate(70, "Fair", ColorFair)
	case deviation <= 10:
		return rate(50, "Moderate Risk", ColorModerate)
	case deviation <= 15:
		return rate(30, "High Risk", ColorHigh)
	default:
		return rate(10, "Critical Risk", ColorCritical)
	}
}

// MoldGrowth rates biological risk from combined humidity and warmth.
func MoldGrowth(tempF, rh float64, p *materials.Profile) Rating {
	sensitive := p.Priorities.MoldGrowth == materials.PriorityVeryHigh

	switch {
	case rh >= 70 && tempF >= 70:
		return rate(5, "Critical - Mold Imminent", ColorCritical)
	case rh >= 65 && tempF >= 65:
		return rate(20, "Very High Risk", ColorVeryHigh)
	case rh >= 60 && tempF >= 60:
		return rate(40, "High Risk", ColorHigh)
	case rh >= 55:
		if sensitive {
			return rate(50, "Moderate-High Risk", ColorModerate)
		}
		return rate(60, "Moderate Risk", ColorModerate)
	case rh >= 45:
		return rate(80, "Low Risk", ColorFair)
	case rh >= 35:
		return rate(90, "Very Low Risk", ColorGood)
	case sensitive || p.VeryLowRH:
		return rate(95, "Minimal Risk", ColorExcellent)
	case rh < 25:
		return rate(85, "No Risk (Very Dry)", ColorExcellent)
	default:
		return rate(92, "Minimal Risk", ColorExcellent)
	}
}

// MetalCorrosion rates corrosion and condensation risk from dew point and
// relative humidity.
func MetalCorrosion(dewPointF, rh float64, p *materials.Profile) Rating {
	if p.Priorities.MetalCorrosion != materials.PriorityCritical {
		switch {
		case dewPointF < 40:
			return rate(95, "Excellent", ColorExcellent)
		case dewPointF < 50:
			return rate(85, "Good", ColorGood)
		case dewPointF < 55:
			return rate(70, "Fair", ColorFair)
		case dewPointF < 60:
			return rate(50, "Moderate Risk", ColorModerate)
		case dewPointF < 65:
			return rate(30, "Low-Moderate Risk", ColorModerate)
		default:
			return rate(20, "Elevated Risk", ColorFair)
		}
	}

	if p.VeryLowRH {
		switch {
		case dewPointF < 30 && rh <= 15:
			return rate(95, "Excellent", ColorExcellent)
		case dewPointF < 40 && rh <= 35:
			return rate(80, "Good", ColorGood)
		case dewPointF < 50 && rh <= 50:
			return rate(55, "Moderate Risk", ColorModerate)
		default:
			return rate(25, "High Risk", ColorHigh)
		}
	}

	switch {
	case dewPointF < 45 && rh <= 50:
		return rate(95, "Excellent", ColorExcellent)
	case dewPointF < 50 && rh <= 55:
		return rate(80, "Good", ColorGood)
	case dewPointF < 55:
		return rate(60, "Fair", ColorFair)
	case dewPointF < 60:
		return rate(40, "Moderate Risk", ColorModerate)
	default:
		return rate(20, "High Risk", ColorHigh)
	}
}
