package probe

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"github.com/nao1215/privacyguard/internal/config"
)

// Suite runs every probe against the live network. It implements the
// orchestrator's Prober interface.
//
// Design decision: Suite holds no per-run state except the signals file,
// which is read at most once. A Suite can serve several detection runs.
type Suite struct {
	cfg       *config.Config
	logger    *slog.Logger
	transport *Transport

	// clientFor returns the HTTP client for a family. Tests replace it to
	// reach httptest servers over loopback.
	clientFor func(Family) *http.Client

	// lookupHost resolves resolver identity names.
	lookupHost func(ctx context.Context, host string) ([]string, error)

	// interfaceAddrs lists the addresses of local interfaces.
	interfaceAddrs func() ([]net.Addr, error)

	// querySTUN sends one binding request.
	querySTUN func(ctx context.Context, server string) (string, error)

	signals func() (*Signals, error)
}

// Option configures a Suite.
type Option func(*Suite)

// WithLogger sets the logger for the suite.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Suite) {
		s.logger = logger
	}
}

// WithHTTPClient makes every family use client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Suite) {
		s.clientFor = func(Family) *http.Client { return client }
	}
}

// WithResolver replaces the host lookup used by the DNS probe.
func WithResolver(lookup func(ctx context.Context, host string) ([]string, error)) Option {
	return func(s *Suite) {
		s.lookupHost = lookup
	}
}

// WithInterfaceAddrs replaces the local interface listing used by the
// WebRTC probe.
func WithInterfaceAddrs(list func() ([]net.Addr, error)) Option {
	return func(s *Suite) {
		s.interfaceAddrs = list
	}
}

// NewSuite creates a Suite from cfg. It fails only when the proxy address
// cannot be turned into a dialer.
func NewSuite(cfg *config.Config, opts ...Option) (*Suite, error) {
	transport, err := NewTransport(cfg.ProxyAddress, cfg.ProbeTimeout, cfg.UserAgent)
	if err != nil {
		return nil, err
	}

	clients := map[Family]*http.Client{
		FamilyAny:  transport.HTTPClient(FamilyAny),
		FamilyIPv4: transport.HTTPClient(FamilyIPv4),
		FamilyIPv6: transport.HTTPClient(FamilyIPv6),
	}

	s := &Suite{
		cfg:            cfg,
		logger:         slog.Default(),
		transport:      transport,
		clientFor:      func(f Family) *http.Client { return clients[f] },
		lookupHost:     net.DefaultResolver.LookupHost,
		interfaceAddrs: net.InterfaceAddrs,
		querySTUN: func(ctx context.Context, server string) (string, error) {
			addr, err := QuerySTUN(ctx, server)
			if err != nil {
				return "", err
			}
			return addr.String(), nil
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.signals = sync.OnceValues(func() (*Signals, error) {
		return LoadSignals(s.cfg.SignalsFile)
	})
	return s, nil
}

// Transport returns the suite's transport.
func (s *Suite) Transport() *Transport {
	return s.transport
}

// withTimeout bounds a probe by the configured probe timeout.
func (s *Suite) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.ProbeTimeout)
}

// geolocator returns a geolocator over the general-purpose client.
func (s *Suite) geolocator() *Geolocator {
	return NewGeolocator(s.clientFor(FamilyAny), s.cfg.GeoEndpoint)
}
