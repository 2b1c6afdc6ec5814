// Package probe implements the host-side detection probes used by
// privacyguard.
//
// Each probe answers one question about what the network can learn about
// the machine running the check:
//
//   - IP: which public address echo services see, and whether it is
//     flagged as a VPN, proxy or hosting address
//   - WebRTC: which host and server-reflexive ICE candidates a browser on
//     this machine would expose
//   - DNS: which recursive resolvers answer this machine's queries
//   - IPv6: whether traffic escapes over IPv6 next to IPv4
//   - Fingerprint and browser: imported from a signals file exported by the
//     browser under test
//
// Suite bundles the probes behind the orchestrator's Prober interface.
// HTTP traffic optionally goes through a SOCKS5 proxy. STUN traffic is UDP
// and always goes direct, which is how a real WebRTC leak bypasses a proxy.
package probe
