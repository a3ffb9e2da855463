// Package risk maps approval confidence to a risk tier.
package risk

import (
	"math"

	"github.com/Dan9191/loan-approval/internal/models"
)

// Lower bounds of the Moderate and High tiers, inclusive
const (
	ModerateThreshold = 0.4
	HighThreshold     = 0.7
)

// Evaluate returns the risk (1 - confidence) and its tier.
// Confidence is clamped to [0,1]; NaN counts as zero confidence.
func Evaluate(confidence float64) models.Assessment {
	switch {
	case math.IsNaN(confidence) || confidence < 0:
		confidence = 0
	case confidence > 1:
		confidence = 1
	}

	risk := 1 - confidence
	return models.Assessment{Risk: risk, Level: Level(risk)}
}

// Level classifies a risk value
func Level(risk float64) models.RiskLevel {
	switch {
	case risk >= HighThreshold:
		return models.RiskHigh
	case risk >= ModerateThreshold:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}
