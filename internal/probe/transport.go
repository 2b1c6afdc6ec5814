package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// checkProxyTimeout bounds the SOCKS5 greeting in CheckProxy.
// This is a connectivity check, not a probe request, so it is kept short.
const checkProxyTimeout = 2 * time.Second

// Family selects the address family used to reach an HTTP endpoint.
type Family int

const (
	// FamilyAny lets the dialer choose.
	FamilyAny Family = iota
	// FamilyIPv4 dials over IPv4 only.
	FamilyIPv4
	// FamilyIPv6 dials over IPv6 only.
	FamilyIPv6
)

// network returns the dial network for the family.
func (f Family) network() string {
	switch f {
	case FamilyIPv4:
		return "tcp4"
	case FamilyIPv6:
		return "tcp6"
	default:
		return "tcp"
	}
}

// String returns the family name used in logs.
func (f Family) String() string {
	switch f {
	case FamilyIPv4:
		return "ipv4"
	case FamilyIPv6:
		return "ipv6"
	default:
		return "any"
	}
}

// Transport creates HTTP clients for probe traffic.
// Without a proxy it dials directly; with one, every TCP connection goes
// through the SOCKS5 proxy so the echo services see the proxy's exit.
//
// Design decision: The dialer is built once and shared by every client.
// Clients are cheap and created per family, so a probe never reuses a
// connection that was opened over a different family.
type Transport struct {
	// proxyAddress is the SOCKS5 address, or empty for direct connections.
	proxyAddress string

	// dialer is either proxy.Direct or a SOCKS5 dialer.
	dialer proxy.Dialer

	// timeout is the per-request timeout of created clients.
	timeout time.Duration

	// userAgent is set on every request.
	userAgent string
}

// NewTransport creates a Transport. An empty proxyAddress means direct
// connections. The proxy is not contacted here; call CheckProxy to verify it.
func NewTransport(proxyAddress string, timeout time.Duration, userAgent string) (*Transport, error) {
	var dialer proxy.Dialer = proxy.Direct
	if proxyAddress != "" {
		d, err := proxy.SOCKS5("tcp", proxyAddress, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		dialer = d
	}
	return &Transport{
		proxyAddress: proxyAddress,
		dialer:       dialer,
		timeout:      timeout,
		userAgent:    userAgent,
	}, nil
}

// Proxied reports whether traffic goes through a proxy.
func (t *Transport) Proxied() bool {
	return t.proxyAddress != ""
}

// DialContext opens a TCP connection for the given family.
//
// Design decision: proxy.Dialer has no context support in its base
// interface. Dialers that implement proxy.ContextDialer are used directly;
// others are dialed in a goroutine so cancellation still returns promptly,
// although the underlying attempt may continue briefly.
func (t *Transport) DialContext(ctx context.Context, family Family, address string) (net.Conn, error) {
	network := family.network()
	if cd, ok := t.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)
	go func() {
		conn, err := t.dialer.Dial(network, address)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HTTPClient returns a client whose connections use the given family.
// Redirects are limited to five; echo services never need more.
func (t *Transport) HTTPClient(family Family) *http.Client {
	transport := &http.Transport{
		DialContext: func(ctx context.Context, _, addr string) (net.Conn, error) {
			return t.DialContext(ctx, family, addr)
		},
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     30 * time.Second,
	}

	return &http.Client{
		Transport: &userAgentTransport{base: transport, userAgent: t.userAgent},
		Timeout:   t.timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// userAgentTransport sets the User-Agent header on every request.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

// RoundTrip implements http.RoundTripper.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.base.RoundTrip(req)
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(clone)
}

// SOCKS5 greeting constants.
const (
	socks5Version  = 0x05
	socks5AuthNone = 0x00
)

// CheckProxy verifies that the configured proxy completes a SOCKS5
// greeting without authentication. It returns nil when no proxy is set.
//
// A misconfigured proxy would otherwise surface as every HTTP probe failing,
// which reads like a network outage rather than a configuration mistake.
func (t *Transport) CheckProxy(ctx context.Context) error {
	if !t.Proxied() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", t.proxyAddress)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrProxyCannotConnect, t.proxyAddress, err)
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(checkProxyTimeout)); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	// version, one method, no authentication
	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyNotSOCKS5, err)
	}
	if resp[0] != socks5Version || resp[1] != socks5AuthNone {
		return fmt.Errorf("%w: reply %#x %#x", ErrProxyNotSOCKS5, resp[0], resp[1])
	}
	return nil
}
