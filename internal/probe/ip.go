package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/netip"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/privacyguard/internal/model"
)

// fetchAll queries every source concurrently. The returned slice is
// index-aligned with sources; a failed source leaves a zero Addr.
// failed counts the sources that did not answer with an address.
func (s *Suite) fetchAll(ctx context.Context, client *http.Client, sources []string) (addrs []netip.Addr, failed int) {
	addrs = make([]netip.Addr, len(sources))

	// Sources are independent; one failure must not cancel the others, so
	// the group has no shared context and every goroutine returns nil.
	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			addr, err := FetchAddress(ctx, client, src)
			if err != nil {
				s.logger.Debug("echo source failed", "source", src, "error", err)
				return nil
			}
			addrs[i] = addr
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	for _, a := range addrs {
		if !a.IsValid() {
			failed++
		}
	}
	return addrs, failed
}

// ProbeIP asks every configured echo source for this machine's public
// address and geolocates the first one.
//
// Sources that disagree mean traffic leaves through more than one exit,
// which is typical of a VPN or proxy with split routing. Geolocation adds
// the provider's own VPN, proxy and hosting flags. A geolocation failure is
// logged and leaves Location nil; only a run where no source answers fails.
func (s *Suite) ProbeIP(ctx context.Context) (model.IPResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	addrs, _ := s.fetchAll(ctx, s.clientFor(FamilyAny), s.cfg.IPSources)

	observations := make([]model.IPObservation, 0, len(addrs))
	distinct := make(map[netip.Addr]struct{}, len(addrs))
	for i, a := range addrs {
		if !a.IsValid() {
			continue
		}
		observations = append(observations, model.IPObservation{
			IP:     a.String(),
			Source: sourceName(s.cfg.IPSources[i]),
		})
		distinct[a] = struct{}{}
	}
	if len(observations) == 0 {
		return model.IPResult{}, fmt.Errorf("%w: tried %d sources", ErrNoObservations, len(s.cfg.IPSources))
	}

	result := model.IPResult{
		ClientIP:     observations[0].IP,
		Observations: observations,
		IsConsistent: len(distinct) == 1,
	}

	geo, err := s.geolocator().Lookup(ctx, result.ClientIP)
	if err != nil {
		s.logger.Debug("geolocation failed", "ip", result.ClientIP, "error", err)
	} else {
		loc := geo.Location
		result.Location = &loc
		result.IsProxy = geo.Proxy
		result.IsHosting = geo.Hosting
	}
	result.IsVPN = !result.IsConsistent || result.IsProxy || result.IsHosting

	s.logger.Debug("ip probe finished",
		"observations", len(observations),
		"consistent", result.IsConsistent,
		"vpn", result.IsVPN)
	return result, nil
}
