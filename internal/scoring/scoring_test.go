package scoring

import (
	"errors"
	"testing"

	"github.com/nao1215/privacyguard/internal/model"
)

func uniform(score int) model.Breakdown {
	var b model.Breakdown
	for _, c := range model.AllCategories {
		b.Set(c, score)
	}
	return b
}

func TestWeightsSumTo100(t *testing.T) {
	t.Parallel()

	sum := 0
	for _, c := range model.AllCategories {
		sum += Weights[c]
	}
	if sum != 100 {
		t.Errorf("weights sum to %d, expected 100", sum)
	}
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		in        model.Breakdown
		wantTotal int
		wantLevel model.Level
	}{
		{name: "all perfect", in: uniform(100), wantTotal: 100, wantLevel: model.LevelHigh},
		{name: "all zero", in: uniform(0), wantTotal: 0, wantLevel: model.LevelLow},
		{name: "all 80", in: uniform(80), wantTotal: 80, wantLevel: model.LevelHigh},
		{name: "all 79", in: uniform(79), wantTotal: 79, wantLevel: model.LevelMedium},
		{name: "all 50", in: uniform(50), wantTotal: 50, wantLevel: model.LevelMedium},
		{name: "all 49", in: uniform(49), wantTotal: 49, wantLevel: model.LevelLow},
		{
			// 0.2*100 + 0.2*60 + 0.2*100 + 0.15*100 + 0.15*100 + 0.1*100 = 92
			name: "webrtc local leak",
			in: model.Breakdown{
				IPPrivacy: 100, WebRTCProtection: 60, DNSPrivacy: 100,
				IPv6Protection: 100, FingerprintResistance: 100, BrowserHardening: 100,
			},
			wantTotal: 92,
			wantLevel: model.LevelHigh,
		},
		{
			// 0.15*85 + 0.1*85 + 0.15*1 = 21.4 -> 21
			name: "rounds down below half",
			in: model.Breakdown{
				DNSPrivacy: 85, IPv6Protection: 85, BrowserHardening: 1,
			},
			wantTotal: 21,
			wantLevel: model.LevelLow,
		},
		{
			// 0.1*5 = 0.5 -> rounds half up to 1
			name:      "rounds half up",
			in:        model.Breakdown{IPv6Protection: 5},
			wantTotal: 1,
			wantLevel: model.LevelLow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := Aggregate(tc.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Total != tc.wantTotal {
				t.Errorf("total: got %d, expected %d", got.Total, tc.wantTotal)
			}
			if got.Level != tc.wantLevel {
				t.Errorf("level: got %s, expected %s", got.Level, tc.wantLevel)
			}
			if got.Breakdown != tc.in {
				t.Errorf("breakdown not preserved: %+v", got.Breakdown)
			}
		})
	}
}

func TestAggregateRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	for _, bad := range []int{-1, 101} {
		b := uniform(100)
		b.DNSPrivacy = bad
		if _, err := Aggregate(b); !errors.Is(err, ErrScoreOutOfRange) {
			t.Errorf("score %d: expected ErrScoreOutOfRange, got %v", bad, err)
		}
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	t.Parallel()

	b := model.Breakdown{IPPrivacy: 37, WebRTCProtection: 91, DNSPrivacy: 64, IPv6Protection: 12, FingerprintResistance: 55, BrowserHardening: 78}
	first, _ := Aggregate(b)
	for range 100 {
		got, _ := Aggregate(b)
		if got != first {
			t.Fatalf("non-deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestAggregateIsMonotonic(t *testing.T) {
	t.Parallel()

	base := model.Breakdown{IPPrivacy: 40, WebRTCProtection: 40, DNSPrivacy: 40, IPv6Protection: 40, FingerprintResistance: 40, BrowserHardening: 40}
	for _, c := range model.AllCategories {
		prev := -1
		for s := 0; s <= 100; s++ {
			b := base
			b.Set(c, s)
			got, err := Aggregate(b)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Total < prev {
				t.Fatalf("%s=%d: total %d decreased from %d", c, s, got.Total, prev)
			}
			prev = got.Total
		}
	}
}

func TestLevelFor(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		total int
		want  model.Level
	}{
		{100, model.LevelHigh},
		{80, model.LevelHigh},
		{79, model.LevelMedium},
		{50, model.LevelMedium},
		{49, model.LevelLow},
		{0, model.LevelLow},
	}
	for _, tc := range testCases {
		if got := LevelFor(tc.total); got != tc.want {
			t.Errorf("total %d: got %s, expected %s", tc.total, got, tc.want)
		}
	}
}
