// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// A privacy audit handles exactly the data it is meant to protect: public
// and local IP addresses, resolver addresses, user agents and fingerprint
// hashes. The SecureHandler keeps that data out of log output:
//   - Identity attributes (ip, client_ip, server, user_agent, fingerprint, ...)
//     are replaced with MaskValue
//   - Credentials (cookies, tokens, proxy URLs with inline passwords) are
//     replaced with MaskValue
//   - IP addresses embedded in messages, strings and errors are replaced
//     with MaskAddress; loopback addresses are kept
//
// Even in verbose mode, sensitive values are masked so logs can be shared
// when reporting a problem.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	logger.Debug("geolocation failed",
//	    "ip", "203.0.113.7",   // logged as ***REDACTED***
//	    "error", err,          // addresses inside become [ip]
//	)
//
//	slog.SetDefault(logger)
package log
