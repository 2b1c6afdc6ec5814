package probe

import (
	"context"
	"fmt"
	"net/netip"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/privacyguard/internal/model"
)

// secureResolvers are privacy-focused public resolvers (Cloudflare, Quad9,
// AdGuard).
var secureResolvers = []string{
	"1.1.1.1", "1.0.0.1",
	"9.9.9.9", "149.112.112.112",
	"94.140.14.14", "94.140.15.15",
}

// publicResolvers are well-known public resolvers. A resolver outside this
// list is assumed to be operated by the VPN or the ISP.
var publicResolvers = []string{
	"8.8.8.8", "8.8.4.4",
	"1.1.1.1", "1.0.0.1",
	"9.9.9.9", "149.112.112.112",
	"208.67.222.222", "208.67.220.220",
}

// Resolver identity answers return the resolver's egress address, which is
// rarely the anycast address in the lists above. The ISP name from
// geolocation identifies the operator instead.
var (
	secureResolverISPs = []string{"cloudflare", "quad9", "adguard", "nextdns"}
	publicResolverISPs = []string{"google", "cloudflare", "quad9", "opendns", "cisco"}
)

// DNS recommendations.
const (
	recommendDNSSecure    = "Switch to a privacy-focused resolver such as Cloudflare 1.1.1.1 or Quad9 9.9.9.9, ideally over DNS-over-HTTPS"
	recommendDNSVPN       = "If you use a VPN, enable its DNS leak protection so queries go to the VPN's resolver"
	recommendDNSMultiple  = "Several resolvers answered; make sure the operating system is not falling back to the ISP resolver"
	recommendDNSEncrypted = "Your resolver looks private; enabling DNS-over-HTTPS in the browser keeps it that way on other networks"
)

// ProbeDNS discovers which recursive resolvers serve this machine.
//
// Identity names such as whoami.akamai.net answer with the address of the
// resolver that asked the authoritative server, so the answers reveal the
// real resolvers even when the system is configured with a forwarder. The
// first resolver is geolocated to name its operator.
func (s *Suite) ProbeDNS(ctx context.Context) (model.DNSResult, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	servers := s.resolverAddresses(ctx)
	if len(servers) == 0 {
		return model.DNSResult{}, fmt.Errorf("%w: tried %v", ErrNoResolvers, s.cfg.ResolverHosts)
	}

	result := model.DNSResult{DNSServers: servers}

	isp := ""
	geo, err := s.geolocator().Lookup(ctx, servers[0])
	if err != nil {
		s.logger.Debug("resolver geolocation failed", "server", servers[0], "error", err)
	} else {
		isp = geo.Location.ISP
		result.DNSLocation = &model.DNSLocation{
			Server:  servers[0],
			Country: geo.Location.Country,
			City:    geo.Location.City,
			ISP:     isp,
		}
	}

	secure := slices.ContainsFunc(servers, func(server string) bool {
		return slices.Contains(secureResolvers, server)
	}) || ispMatches(isp, secureResolverISPs)
	public := slices.Contains(publicResolvers, servers[0]) || ispMatches(isp, publicResolverISPs)

	result.HasDNSLeak = !secure
	result.IsUsingVPNDNS = !public
	result.Recommendations = dnsRecommendations(result)

	s.logger.Debug("dns probe finished",
		"servers", len(servers),
		"leak", result.HasDNSLeak,
		"vpn_dns", result.IsUsingVPNDNS)
	return result, nil
}

// resolverAddresses looks up every identity name concurrently and returns
// the distinct answers in configuration order.
func (s *Suite) resolverAddresses(ctx context.Context) []string {
	answers := make([][]string, len(s.cfg.ResolverHosts))

	var g errgroup.Group
	for i, host := range s.cfg.ResolverHosts {
		g.Go(func() error {
			addrs, err := s.lookupHost(ctx, host)
			if err != nil {
				s.logger.Debug("resolver identity lookup failed", "host", host, "error", err)
				return nil
			}
			answers[i] = addrs
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines never return an error

	var servers []string
	for _, addrs := range answers {
		for _, raw := range addrs {
			addr, err := netip.ParseAddr(raw)
			if err != nil {
				continue
			}
			a := addr.Unmap().String()
			if !slices.Contains(servers, a) {
				servers = append(servers, a)
			}
		}
	}
	return servers
}

// ispMatches reports whether isp contains one of names, case-insensitively.
func ispMatches(isp string, names []string) bool {
	if isp == "" {
		return false
	}
	lower := strings.ToLower(isp)
	return slices.ContainsFunc(names, func(n string) bool {
		return strings.Contains(lower, n)
	})
}

func dnsRecommendations(r model.DNSResult) []string {
	var recs []string
	if r.HasDNSLeak {
		recs = append(recs, recommendDNSSecure)
		if !r.IsUsingVPNDNS {
			recs = append(recs, recommendDNSVPN)
		}
	}
	if len(r.DNSServers) > 2 {
		recs = append(recs, recommendDNSMultiple)
	}
	if !r.HasDNSLeak {
		recs = append(recs, recommendDNSEncrypted)
	}
	return recs
}
