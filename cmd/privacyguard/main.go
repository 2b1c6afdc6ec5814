// Package main provides the entry point for the PrivacyGuard CLI.
//
// PrivacyGuard audits how much a machine reveals about its user: public IP
// exposure, WebRTC address leaks, DNS resolver leaks, IPv6 leaks outside a
// tunnel, browser fingerprint entropy and browser hardening. Each category
// is scored from 0 to 100 and combined into a weighted security score.
//
// Usage:
//
//	privacyguard detect
//	privacyguard detect --proxy 127.0.0.1:9050 --signals signals.json
//	privacyguard history list
//
// See --help for all available options.
package main

// main is the entry point for PrivacyGuard.
func main() {
	Execute()
}
