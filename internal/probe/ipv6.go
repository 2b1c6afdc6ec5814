package probe

import (
	"context"
	"fmt"
	"net/netip"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/privacyguard/internal/analyzer"
	"github.com/nao1215/privacyguard/internal/model"
)

// IPv6 recommendations.
const (
	recommendIPv6Tunnel  = "Use a VPN that tunnels IPv6, or disable IPv6 on this interface while connected"
	recommendIPv6Privacy = "Enable IPv6 privacy extensions so outgoing connections use temporary addresses"
	recommendIPv6Check   = "Check that your VPN still covers IPv6 after reconnecting or switching networks"
)

// ProbeIPv6 queries IPv4-only and IPv6-only echo sources in parallel.
//
// Both families answering means traffic can leave over IPv6 beside the IPv4
// path, which is how most VPN IPv6 leaks look from outside. IPv6 is
// reported disabled only when every IPv6 source failed to connect. When
// every source of both families fails the probe fails.
func (s *Suite) ProbeIPv6(ctx context.Context) (model.IPv6Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		v6, v4             []netip.Addr
		v6Failed, v4Failed int
	)
	var g errgroup.Group
	g.Go(func() error {
		v6, v6Failed = s.fetchAll(ctx, s.clientFor(FamilyIPv6), s.cfg.IPv6Sources)
		return nil
	})
	g.Go(func() error {
		v4, v4Failed = s.fetchAll(ctx, s.clientFor(FamilyIPv4), s.cfg.IPv4Sources)
		return nil
	})
	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	total := len(s.cfg.IPv6Sources) + len(s.cfg.IPv4Sources)
	if total > 0 && v6Failed+v4Failed == total {
		return model.IPv6Result{}, fmt.Errorf("%w: all %d IPv4 and IPv6 sources failed", ErrNoObservations, total)
	}

	result := model.IPv6Result{
		IPv6Addresses: uniqueFamily(v6, netip.Addr.Is6),
		IPv4Addresses: uniqueFamily(v4, netip.Addr.Is4),
	}
	result.HasIPv6 = len(result.IPv6Addresses) > 0
	result.HasIPv6Leak = result.HasIPv6 && len(result.IPv4Addresses) > 0
	result.IsIPv6Disabled = !result.HasIPv6 && v6Failed == len(s.cfg.IPv6Sources)
	result.Recommendations = ipv6Recommendations(result)

	s.logger.Debug("ipv6 probe finished",
		"ipv6", len(result.IPv6Addresses),
		"ipv4", len(result.IPv4Addresses),
		"leak", result.HasIPv6Leak)
	return result, nil
}

// uniqueFamily returns the valid addresses accepted by keep, deduplicated in
// first-seen order.
func uniqueFamily(addrs []netip.Addr, keep func(netip.Addr) bool) []string {
	out := []string{}
	seen := make(map[netip.Addr]struct{}, len(addrs))
	for _, a := range addrs {
		if !a.IsValid() || !keep(a) {
			continue
		}
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a.String())
	}
	return out
}

func ipv6Recommendations(r model.IPv6Result) []string {
	var recs []string
	if r.HasIPv6Leak {
		recs = append(recs, recommendIPv6Tunnel)
	}
	for _, a := range r.IPv6Addresses {
		if analyzer.IsEUI64(a) {
			recs = append(recs, recommendIPv6Privacy)
			break
		}
	}
	if r.HasIPv6 && !r.HasIPv6Leak {
		recs = append(recs, recommendIPv6Check)
	}
	return recs
}
