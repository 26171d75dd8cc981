package risk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/collection-climate-etl/internal/materials"
)

// FluctuationStatus summarises a FluctuationReport.
type FluctuationStatus string

const (
	// FluctuationNone means no swing values were supplied.
	FluctuationNone    FluctuationStatus = "none"
	FluctuationWarning FluctuationStatus = "warning"
	FluctuationSuccess FluctuationStatus = "success"
	FluctuationNeutral FluctuationStatus = "neutral"
)

// FluctuationReport is the outcome of a 24-hour stability check.
type FluctuationReport struct {
	Status   FluctuationStatus `json:"status"`
	Messages []string          `json:"messages,omitempty"`
}

// Message joins the report messages into one sentence block.
func (r FluctuationReport) Message() string {
	return strings.Join(r.Messages, " ")
}

// AnalyzeFluctuation checks 24-hour temperature (±°F) and RH (±%) swings
// against the limits for profile. Either swing may be nil.
func AnalyzeFluctuation(tempSwing, rhSwing *float64, p *materials.Profile) FluctuationReport {
	if tempSwing == nil && rhSwing == nil {
		return FluctuationReport{Status: FluctuationNone}
	}

	name := strings.ToLower(p.Name)
	mech := p.Priorities.MechanicalDecay
	var warnings []string

	if tempSwing != nil {
		t := num(*tempSwing)
		if mech.Strict() {
			switch {
			case *tempSwing > 3:
				warnings = append(warnings, fmt.Sprintf(
					"Temperature fluctuation of ±%s°F exceeds recommended ±3°F for %s. Dimensional changes may cause mechanical damage.", t, name))
			case *tempSwing > 2:
				warnings = append(warnings, fmt.Sprintf(
					"Temperature fluctuation of ±%s°F is at the upper acceptable limit for sensitive materials.", t))
			}
		} else if *tempSwing > 5 {
			warnings = append(warnings, fmt.Sprintf(
				"Temperature fluctuation of ±%s°F exceeds recommended ±4-5°F daily variation. This accelerates chemical degradation.", t))
		}
	}

	if rhSwing != nil {
		r := num(*rhSwing)
		switch mech {
		case materials.PriorityCritical:
			switch {
			case *rhSwing > 4:
				warnings = append(warnings, fmt.Sprintf(
					"RH fluctuation of ±%s%% is critical for %s. Keep below ±4%% to prevent cracking, warping, and delamination.", r, name))
			case *rhSwing > 3:
				warnings = append(warnings, fmt.Sprintf(
					"RH fluctuation of ±%s%% is approaching the safe limit. Monitor closely for dimensional changes.", r))
			}
		case materials.PriorityVeryHigh:
			if *rhSwing > 5 {
				warnings = append(warnings, fmt.Sprintf(
					"RH fluctuation of ±%s%% may cause dimensional stress in %s. Recommended: ±5%% or less per 24 hours.", r, name))
			}
		default:
			switch {
			case *rhSwing > 10:
				warnings = append(warnings, fmt.Sprintf(
					"RH fluctuation of ±%s%% exceeds Bizot Protocol recommendation of ±10%% per 24 hours.", r))
			case *rhSwing > 7:
				warnings = append(warnings, fmt.Sprintf(
					"RH fluctuation of ±%s%% is elevated. While within acceptable limits, lower fluctuation improves stability.", r))
			}
		}
	}

	if len(warnings) > 0 {
		return FluctuationReport{Status: FluctuationWarning, Messages: warnings}
	}

	var good []string
	if tempSwing != nil && *tempSwing <= 3 {
		good = append(good, fmt.Sprintf("Temperature stability (±%s°F) is excellent.", num(*tempSwing)))
	}
	if rhSwing != nil && *rhSwing <= 5 {
		good = append(good, fmt.Sprintf("RH stability (±%s%%) is excellent.", num(*rhSwing)))
	}
	if len(good) > 0 {
		return FluctuationReport{Status: FluctuationSuccess, Messages: good}
	}

	return FluctuationReport{
		Status:   FluctuationNeutral,
		Messages: []string{fmt.Sprintf("Environmental fluctuation levels are within acceptable ranges for %s.", name)},
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
