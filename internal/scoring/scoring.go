package scoring

import (
	"errors"
	"fmt"

	"github.com/nao1215/privacyguard/internal/model"
)

// ErrScoreOutOfRange is returned when a category score lies outside [0, 100].
// Analyzers always clamp, so this indicates a bug in the caller.
var ErrScoreOutOfRange = errors.New("category score out of range")

// Weights are expressed in percent so that the weighted sum is exact integer
// arithmetic. They sum to 100.
var Weights = map[model.Category]int{
	model.CategoryIP:          20,
	model.CategoryWebRTC:      20,
	model.CategoryFingerprint: 20,
	model.CategoryBrowser:     15,
	model.CategoryDNS:         15,
	model.CategoryIPv6:        10,
}

const (
	// HighThreshold is the lowest total classified as LevelHigh.
	HighThreshold = 80
	// MediumThreshold is the lowest total classified as LevelMedium.
	MediumThreshold = 50
)

// Aggregate computes the weighted total and level for a breakdown.
//
// The total is round(Σ score × weight), computed in hundredths with
// half-up rounding so that the result never depends on floating point.
func Aggregate(b model.Breakdown) (model.SecurityScore, error) {
	sum := 0
	for _, c := range model.AllCategories {
		s := b.Get(c)
		if s < 0 || s > 100 {
			return model.SecurityScore{}, fmt.Errorf("%w: %s=%d", ErrScoreOutOfRange, c, s)
		}
		sum += s * Weights[c]
	}
	total := (sum + 50) / 100

	return model.SecurityScore{
		Total:     total,
		Breakdown: b,
		Level:     LevelFor(total),
	}, nil
}

// LevelFor classifies a total. Each tier includes its lower bound.
func LevelFor(total int) model.Level {
	switch {
	case total >= HighThreshold:
		return model.LevelHigh
	case total >= MediumThreshold:
		return model.LevelMedium
	default:
		return model.LevelLow
	}
}

// Contribution returns how many hundredths of a point a category adds to the
// total. Reports use it to chart the breakdown.
func Contribution(b model.Breakdown, c model.Category) int {
	return b.Get(c) * Weights[c]
}
