package config

import "errors"

// Configuration validation errors returned by Config.Validate().
// Sentinel values let callers use errors.Is() while keeping the messages
// human-readable.
var (
	// ErrInvalidProbeTimeout is returned when the probe timeout is not positive.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrNoIPSources is returned when no IP echo source is configured.
	ErrNoIPSources = errors.New("no IP echo sources configured")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidHistoryLimit is returned when the history limit is not positive.
	ErrInvalidHistoryLimit = errors.New("invalid history limit: must be positive")

	// ErrInvalidProxyAddress is returned when the proxy is not "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrInvalidGeoEndpoint is returned when the geolocation endpoint is not
	// an absolute http(s) URL.
	ErrInvalidGeoEndpoint = errors.New("invalid geolocation endpoint: expected an http(s) URL")
)
