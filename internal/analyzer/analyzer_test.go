package analyzer

import (
	"reflect"
	"testing"

	"github.com/nao1215/privacyguard/internal/model"
)

func TestIPPrivacy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		obs        []model.IPObservation
		wantScore  int
		wantIssues int
	}{
		{name: "empty input", obs: nil, wantScore: 100, wantIssues: 0},
		{
			name:      "single consistent public IP",
			obs:       []model.IPObservation{{IP: "203.0.113.5", Source: "a"}, {IP: "203.0.113.5", Source: "b"}},
			wantScore: 100,
		},
		{
			name:       "inconsistent IPs",
			obs:        []model.IPObservation{{IP: "203.0.113.5"}, {IP: "198.51.100.7"}},
			wantScore:  70,
			wantIssues: 1,
		},
		{
			name:       "local IP leak",
			obs:        []model.IPObservation{{IP: "192.168.1.20"}},
			wantScore:  80,
			wantIssues: 1,
		},
		{
			name:       "inconsistent and local",
			obs:        []model.IPObservation{{IP: "10.0.0.3"}, {IP: "203.0.113.5"}},
			wantScore:  50,
			wantIssues: 2,
		},
		{
			name:      "172 outside the private block is public",
			obs:       []model.IPObservation{{IP: "172.32.0.1"}},
			wantScore: 100,
		},
		{
			name:      "empty strings ignored",
			obs:       []model.IPObservation{{IP: ""}, {IP: "203.0.113.5"}},
			wantScore: 100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := IPPrivacy(tc.obs)
			if got.Score != tc.wantScore {
				t.Errorf("score: got %d, expected %d", got.Score, tc.wantScore)
			}
			if len(got.Issues) != tc.wantIssues {
				t.Errorf("issues: got %d (%v), expected %d", len(got.Issues), got.Issues, tc.wantIssues)
			}
		})
	}
}

func TestWebRTCProtection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		in        model.WebRTCResult
		wantScore int
	}{
		{name: "no candidates", in: model.WebRTCResult{}, wantScore: 100},
		{name: "one local", in: model.WebRTCResult{LocalIPs: []string{"192.168.1.2"}}, wantScore: 60},
		{name: "one public", in: model.WebRTCResult{PublicIPs: []string{"203.0.113.5"}}, wantScore: 70},
		{name: "local and public", in: model.WebRTCResult{LocalIPs: []string{"10.0.0.2"}, PublicIPs: []string{"203.0.113.5"}}, wantScore: 30},
		{name: "error is neutral", in: model.WebRTCResult{Error: "timeout"}, wantScore: 50},
		{name: "error overrides partial data", in: model.WebRTCResult{LocalIPs: []string{"10.0.0.2"}, PublicIPs: []string{"203.0.113.5"}, Error: "x"}, wantScore: 50},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := WebRTCProtection(tc.in).Score; got != tc.wantScore {
				t.Errorf("got %d, expected %d", got, tc.wantScore)
			}
		})
	}
}

func TestDNSPrivacy(t *testing.T) {
	t.Parallel()

	jp := &model.Location{Country: "Japan"}

	testCases := []struct {
		name      string
		in        model.DNSResult
		loc       *model.Location
		wantScore int
	}{
		{name: "clean without location", in: model.DNSResult{}, wantScore: 100},
		{name: "clean with vpn dns", in: model.DNSResult{IsUsingVPNDNS: true}, loc: jp, wantScore: 100},
		{name: "not vpn dns with location", in: model.DNSResult{}, loc: jp, wantScore: 80},
		{name: "leak", in: model.DNSResult{HasDNSLeak: true, IsUsingVPNDNS: true}, wantScore: 60},
		{name: "three resolvers", in: model.DNSResult{DNSServers: []string{"a", "b", "c"}}, wantScore: 90},
		{name: "duplicate resolvers count once", in: model.DNSResult{DNSServers: []string{"a", "a", "b"}}, wantScore: 100},
		{
			name:      "country mismatch",
			in:        model.DNSResult{IsUsingVPNDNS: true, DNSLocation: &model.DNSLocation{Country: "Germany"}},
			loc:       jp,
			wantScore: 85,
		},
		{
			name:      "missing dns country skips comparison",
			in:        model.DNSResult{IsUsingVPNDNS: true, DNSLocation: &model.DNSLocation{}},
			loc:       jp,
			wantScore: 100,
		},
		{
			name:      "privacy resolver bonus clamps",
			in:        model.DNSResult{DNSLocation: &model.DNSLocation{ISP: "Cloudflare, Inc."}},
			wantScore: 100,
		},
		{
			name:      "privacy resolver bonus is case-insensitive",
			in:        model.DNSResult{HasDNSLeak: true, DNSLocation: &model.DNSLocation{ISP: "QUAD9"}},
			wantScore: 70,
		},
		{
			name: "all deductions",
			in: model.DNSResult{
				HasDNSLeak:  true,
				DNSServers:  []string{"a", "b", "c"},
				DNSLocation: &model.DNSLocation{Country: "Germany"},
			},
			loc:       jp,
			wantScore: 15,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := DNSPrivacy(tc.in, tc.loc).Score; got != tc.wantScore {
				t.Errorf("got %d, expected %d", got, tc.wantScore)
			}
		})
	}
}

func TestIPv6Protection(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		in        model.IPv6Result
		wantScore int
	}{
		{name: "disabled with no addresses", in: model.IPv6Result{IsIPv6Disabled: true}, wantScore: 100},
		{name: "nothing known", in: model.IPv6Result{}, wantScore: 100},
		{
			name:      "temporary address only",
			in:        model.IPv6Result{HasIPv6: true, IPv6Addresses: []string{"2001:db8::1234:5678"}},
			wantScore: 100,
		},
		{
			name:      "eui64 only",
			in:        model.IPv6Result{HasIPv6: true, IPv6Addresses: []string{"2001:db8::211:22ff:fe33:4455"}},
			wantScore: 60,
		},
		{
			name:      "link local only",
			in:        model.IPv6Result{HasIPv6: true, IPv6Addresses: []string{"fe80::1"}},
			wantScore: 85,
		},
		{
			name: "eui64 plus a temporary address",
			in: model.IPv6Result{
				HasIPv6:       true,
				IPv6Addresses: []string{"2001:db8::211:22ff:fe33:4455", "2001:db8::abcd"},
			},
			wantScore: 75,
		},
		{
			name: "leak with dual stack",
			in: model.IPv6Result{
				HasIPv6:       true,
				HasIPv6Leak:   true,
				IPv6Addresses: []string{"2001:db8::abcd"},
				IPv4Addresses: []string{"203.0.113.5"},
			},
			wantScore: 40,
		},
		{
			name: "disabled bonus is capped before later deductions",
			in: model.IPv6Result{
				HasIPv6:        true,
				IsIPv6Disabled: true,
				IPv6Addresses:  []string{"fe80::1"},
			},
			wantScore: 85,
		},
		{
			name: "all deductions clamp at zero",
			in: model.IPv6Result{
				HasIPv6:       true,
				HasIPv6Leak:   true,
				IPv6Addresses: []string{"2001:db8::211:22ff:fe33:4455"},
				IPv4Addresses: []string{"203.0.113.5"},
			},
			wantScore: 0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IPv6Protection(tc.in).Score; got != tc.wantScore {
				t.Errorf("got %d, expected %d", got, tc.wantScore)
			}
		})
	}
}

func TestUniqueness(t *testing.T) {
	t.Parallel()

	fonts := func(n int) []string {
		out := make([]string, n)
		for i := range out {
			out[i] = "font"
		}
		return out
	}

	testCases := []struct {
		name string
		in   model.FingerprintResult
		want int
	}{
		{name: "empty", in: model.FingerprintResult{}, want: 0},
		{name: "canvas", in: model.FingerprintResult{Canvas: "x"}, want: 25},
		{name: "webgl and audio", in: model.FingerprintResult{WebGL: "x", Audio: "y"}, want: 45},
		{name: "one font", in: model.FingerprintResult{Fonts: fonts(1)}, want: 10},
		{name: "five fonts", in: model.FingerprintResult{Fonts: fonts(5)}, want: 10},
		{name: "six fonts", in: model.FingerprintResult{Fonts: fonts(6)}, want: 15},
		{name: "ten fonts", in: model.FingerprintResult{Fonts: fonts(10)}, want: 15},
		{name: "eleven fonts", in: model.FingerprintResult{Fonts: fonts(11)}, want: 20},
		{name: "screen", in: model.FingerprintResult{Screen: "1920x1080"}, want: 10},
		{
			name: "everything",
			in:   model.FingerprintResult{Canvas: "a", WebGL: "b", Audio: "c", Fonts: fonts(20), Screen: "d"},
			want: 100,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Uniqueness(tc.in); got != tc.want {
				t.Errorf("got %d, expected %d", got, tc.want)
			}
		})
	}
}

func TestFingerprintResistance(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		uniqueness int
		want       int
	}{
		{0, 100},
		{45, 55},
		{100, 0},
		{150, 0},
		{-10, 100},
	}
	for _, tc := range testCases {
		got := FingerprintResistance(model.FingerprintResult{UniquenessScore: tc.uniqueness}).Score
		if got != tc.want {
			t.Errorf("uniqueness %d: got %d, expected %d", tc.uniqueness, got, tc.want)
		}
	}
}

func TestBrowserHardening(t *testing.T) {
	t.Parallel()

	const (
		firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
		chromeUA  = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
		edgeUA    = chromeUA + " Edg/126.0.0.0"
	)

	testCases := []struct {
		name string
		in   model.BrowserResult
		want int
	}{
		{name: "hardened firefox clamps", in: model.BrowserResult{UserAgent: firefoxUA, DoNotTrack: true}, want: 100},
		{name: "hardened chrome", in: model.BrowserResult{UserAgent: chromeUA, DoNotTrack: true}, want: 90},
		{name: "edge is neutral", in: model.BrowserResult{UserAgent: edgeUA, DoNotTrack: true}, want: 100},
		{name: "no dnt", in: model.BrowserResult{}, want: 90},
		{name: "cookies", in: model.BrowserResult{DoNotTrack: true, CookiesEnabled: true}, want: 85},
		{name: "five plugins tolerated", in: model.BrowserResult{DoNotTrack: true, Plugins: make([]string, 5)}, want: 100},
		{name: "six plugins", in: model.BrowserResult{DoNotTrack: true, Plugins: make([]string, 6)}, want: 90},
		{name: "hardware exposed", in: model.BrowserResult{DoNotTrack: true, HardwareConcurrency: 8, DeviceMemory: 0.5}, want: 90},
		{
			name: "firefox bonus co-occurs with deductions",
			in:   model.BrowserResult{UserAgent: firefoxUA, CookiesEnabled: true},
			want: 80,
		},
		{
			name: "everything exposed",
			in: model.BrowserResult{
				UserAgent:           chromeUA,
				CookiesEnabled:      true,
				Plugins:             make([]string, 9),
				HardwareConcurrency: 4,
				DeviceMemory:        8,
			},
			want: 45,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := BrowserHardening(tc.in).Score; got != tc.want {
				t.Errorf("got %d, expected %d", got, tc.want)
			}
		})
	}
}

func TestAnalyzersArePure(t *testing.T) {
	t.Parallel()

	results := &model.DetectionResults{
		IP:          model.IPResult{Observations: []model.IPObservation{{IP: "10.0.0.1"}, {IP: "203.0.113.5"}}, Location: &model.Location{Country: "JP"}},
		WebRTC:      model.WebRTCResult{LocalIPs: []string{"10.0.0.1"}},
		DNS:         model.DNSResult{HasDNSLeak: true, DNSServers: []string{"a", "b", "c"}},
		IPv6:        model.IPv6Result{HasIPv6: true, IPv6Addresses: []string{"fe80::1"}},
		Fingerprint: model.FingerprintResult{UniquenessScore: 60},
		Browser:     model.BrowserResult{CookiesEnabled: true},
	}

	first := Analyze(results)
	second := Analyze(results)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("analysis differs between calls:\n%+v\n%+v", first, second)
	}
	for _, c := range model.AllCategories {
		if first.Breakdown.Get(c) != first.Scores[c].Score {
			t.Errorf("%s: breakdown %d does not match score %d", c, first.Breakdown.Get(c), first.Scores[c].Score)
		}
		if s := first.Scores[c].Score; s < 0 || s > 100 {
			t.Errorf("%s: score %d out of range", c, s)
		}
	}
}
