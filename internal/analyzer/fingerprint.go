package analyzer

import (
	"fmt"

	"github.com/nao1215/privacyguard/internal/model"
)

// Uniqueness weights per fingerprint channel.
const (
	weightCanvas    = 25
	weightWebGL     = 25
	weightAudio     = 20
	weightManyFonts = 20
	weightSomeFonts = 15
	weightFewFonts  = 10
	weightScreen    = 10
	manyFontsCutoff = 10
	someFontsCutoff = 5
	maxUniqueness   = 100
)

// Uniqueness estimates how identifying a fingerprint is, from 0 to 100.
// Canvas, WebGL and audio contribute by presence; fonts contribute by count.
func Uniqueness(f model.FingerprintResult) int {
	u := 0
	if f.Canvas != "" {
		u += weightCanvas
	}
	if f.WebGL != "" {
		u += weightWebGL
	}
	if f.Audio != "" {
		u += weightAudio
	}
	switch n := len(f.Fonts); {
	case n > manyFontsCutoff:
		u += weightManyFonts
	case n > someFontsCutoff:
		u += weightSomeFonts
	case n > 0:
		u += weightFewFonts
	}
	if f.Screen != "" {
		u += weightScreen
	}
	return min(maxUniqueness, u)
}

// FingerprintResistance is the complement of the probe's uniqueness score.
func FingerprintResistance(f model.FingerprintResult) model.CategoryScore {
	issues := []string{}
	if f.Canvas != "" {
		issues = append(issues, "Canvas fingerprint is readable")
	}
	if f.WebGL != "" {
		issues = append(issues, "WebGL renderer fingerprint is readable")
	}
	if f.Audio != "" {
		issues = append(issues, "Audio stack fingerprint is readable")
	}
	if len(f.Fonts) > 0 {
		issues = append(issues, fmt.Sprintf("%d installed fonts detected", len(f.Fonts)))
	}
	if f.Screen != "" {
		issues = append(issues, "Screen characteristics are exposed")
	}
	return model.CategoryScore{Score: clamp(baseline - clamp(f.UniquenessScore)), Issues: issues}
}
