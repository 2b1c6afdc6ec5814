package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/privacyguard/internal/analyzer"
	"github.com/nao1215/privacyguard/internal/model"
)

// ProbeWebRTC collects the ICE candidates a page could read.
//
// When the signals file carries candidates gathered by the browser, those
// are used as-is. Otherwise the probe emulates ICE gathering on the host:
// host candidates come from local interfaces and server-reflexive
// candidates from STUN binding requests. STUN is UDP and never goes through
// the SOCKS5 proxy, exactly like a browser's ICE agent.
func (s *Suite) ProbeWebRTC(ctx context.Context) (model.WebRTCResult, error) {
	candidates, err := s.browserCandidates()
	if err != nil {
		return model.WebRTCResult{}, err
	}
	if candidates == nil {
		ctx, cancel := s.withTimeout(ctx)
		defer cancel()
		candidates = append(s.hostCandidates(), s.reflexiveCandidates(ctx)...)
	}
	if len(candidates) == 0 {
		return model.WebRTCResult{}, ErrNoCandidates
	}

	local, public := analyzer.SplitCandidates(candidates)
	result := model.WebRTCResult{
		HasLeak:   len(local) > 0 || len(public) > 0,
		LocalIPs:  local,
		PublicIPs: public,
	}

	s.logger.Debug("webrtc probe finished",
		"candidates", len(candidates),
		"local", len(local),
		"public", len(public))
	return result, nil
}

// browserCandidates returns the candidate addresses from the signals file.
// It returns nil without error when no file is configured or the file has
// no WebRTC section.
func (s *Suite) browserCandidates() ([]string, error) {
	if s.cfg.SignalsFile == "" {
		return nil, nil
	}
	sig, err := s.signals()
	if err != nil {
		return nil, err
	}
	if sig.WebRTC == nil {
		return nil, nil
	}
	out := make([]string, 0, len(sig.WebRTC.Candidates))
	for _, c := range sig.WebRTC.Candidates {
		if addr := CandidateAddress(c); addr != "" {
			out = append(out, addr)
		}
	}
	return out, nil
}

// hostCandidates lists the interface addresses a browser would offer as host
// candidates. Loopback is never offered. IPv6 link-local addresses are
// skipped too; browsers do not gather them.
func (s *Suite) hostCandidates() []string {
	addrs, err := s.interfaceAddrs()
	if err != nil {
		s.logger.Debug("listing interface addresses failed", "error", err)
		return nil
	}

	var out []string
	for _, a := range addrs {
		var ip net.IP
		switch v := a.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}
		addr, ok := netip.AddrFromSlice(ip)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if addr.IsLoopback() || addr.IsUnspecified() || (addr.Is6() && addr.IsLinkLocalUnicast()) {
			continue
		}
		out = append(out, addr.String())
	}
	return out
}

// reflexiveCandidates queries every STUN server concurrently and returns the
// reflexive addresses in server order.
func (s *Suite) reflexiveCandidates(ctx context.Context) []string {
	found := make([]string, len(s.cfg.STUNServers))
	errs := make([]error, len(s.cfg.STUNServers))

	var g errgroup.Group
	for i, server := range s.cfg.STUNServers {
		g.Go(func() error {
			addr, err := s.querySTUN(ctx, server)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", server, err)
				return nil
			}
			found[i] = addr
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	if err := errors.Join(errs...); err != nil {
		s.logger.Debug("stun queries failed", "error", err)
	}

	var out []string
	for _, addr := range found {
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
