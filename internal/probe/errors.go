package probe

import "errors"

// Probe errors. A probe that returns one of these is counted as failed and
// its category falls back to a neutral result.
var (
	// ErrNoObservations is returned when no echo source reported an address.
	ErrNoObservations = errors.New("no IP echo source answered")

	// ErrNoResolvers is returned when no resolver identity lookup succeeded.
	ErrNoResolvers = errors.New("no resolver identity lookup succeeded")

	// ErrNoCandidates is returned when neither local interfaces nor STUN
	// produced an ICE candidate.
	ErrNoCandidates = errors.New("no ICE candidates gathered")

	// ErrSignalsNotConfigured is returned by the fingerprint and browser
	// probes when no signals file is configured.
	ErrSignalsNotConfigured = errors.New("browser signals file not configured")

	// ErrInvalidAddress is returned when an echo source answers with
	// something that is not an IP address.
	ErrInvalidAddress = errors.New("response is not an IP address")

	// ErrGeolocationFailed is returned when the geolocation API reports a
	// failed lookup.
	ErrGeolocationFailed = errors.New("geolocation lookup failed")

	// ErrProxyNotSOCKS5 is returned when the configured proxy does not
	// complete a SOCKS5 greeting.
	ErrProxyNotSOCKS5 = errors.New("proxy did not answer as a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when the proxy address refuses or
	// drops the TCP connection.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")
)
