package config

import (
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "privacyguard"

	// DefaultProbeTimeout bounds each probe's network calls. Echo services
	// normally answer within a second; 10 seconds tolerates slow VPN exits.
	DefaultProbeTimeout = 10 * time.Second

	// DefaultHistoryLimit is the number of runs kept in history.
	// Older runs are trimmed when a new one is saved.
	DefaultHistoryLimit = 20

	// DefaultGeoEndpoint is the ip-api.com JSON endpoint. The address to look
	// up is appended to it.
	DefaultGeoEndpoint = "http://ip-api.com/json/"

	// DefaultUserAgent identifies privacyguard in HTTP requests.
	DefaultUserAgent = "privacyguard/1.0 (+https://github.com/nao1215/privacyguard)"
)

// DefaultIPSources are echo services queried over any address family.
// Each returns the caller's public address as JSON or plain text.
func DefaultIPSources() []string {
	return []string{
		"https://api.ipify.org?format=json",
		"https://httpbin.org/ip",
		"https://api.myip.com",
	}
}

// DefaultIPv4Sources are echo services queried over IPv4 only.
func DefaultIPv4Sources() []string {
	return []string{
		"https://api.ipify.org?format=json",
		"https://v4.ident.me",
	}
}

// DefaultIPv6Sources are echo services queried over IPv6 only.
func DefaultIPv6Sources() []string {
	return []string{
		"https://v6.ipv6-test.com/api/myip.php",
		"https://api6.ipify.org?format=json",
		"https://v6.ident.me",
	}
}

// DefaultSTUNServers are queried for server-reflexive candidates.
func DefaultSTUNServers() []string {
	return []string{
		"stun.l.google.com:19302",
		"stun.cloudflare.com:3478",
	}
}

// DefaultResolverHosts are names whose A/AAAA answers are the egress
// address of the resolver that performed the lookup.
func DefaultResolverHosts() []string {
	return []string{
		"whoami.akamai.net",
		"ns.ident.me",
	}
}

// Config holds all configuration options for privacyguard.
// It is populated from defaults, the optional config file and CLI flags,
// in that order, and passed down explicitly.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The config file has sections, but they are flattened here
// by File.Apply.
type Config struct {
	// ProbeTimeout bounds the network calls made by each probe.
	ProbeTimeout time.Duration

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	// HTTP probes go through it; STUN always goes direct, which is exactly
	// how a WebRTC leak bypasses a proxy.
	ProxyAddress string

	// IPSources, IPv4Sources and IPv6Sources are echo service URLs.
	IPSources   []string
	IPv4Sources []string
	IPv6Sources []string

	// GeoEndpoint is the geolocation API prefix.
	GeoEndpoint string

	// STUNServers are "host:port" UDP endpoints.
	STUNServers []string

	// ResolverHosts are resolver identity names.
	ResolverHosts []string

	// SignalsFile is the path to a JSON file exported from the browser under
	// test. It supplies fingerprint, browser and WebRTC candidate data.
	// When empty, the fingerprint and browser probes fail and fall back.
	SignalsFile string

	// UserAgent is sent with every HTTP probe request.
	UserAgent string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is an explicit path to the configuration file.
	// If empty, .privacyguard is searched in the current and home directories.
	ConfigFilePath string

	// JSONReport and MarkdownReport select the report format.
	// They are mutually exclusive; the default is plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB controls whether completed runs are stored in history.
	SaveToDB bool

	// HistoryLimit is the maximum number of runs kept in history.
	HistoryLimit int
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		ProbeTimeout:  DefaultProbeTimeout,
		IPSources:     DefaultIPSources(),
		IPv4Sources:   DefaultIPv4Sources(),
		IPv6Sources:   DefaultIPv6Sources(),
		GeoEndpoint:   DefaultGeoEndpoint,
		STUNServers:   DefaultSTUNServers(),
		ResolverHosts: DefaultResolverHosts(),
		UserAgent:     DefaultUserAgent,
		DBDir:         XDGDataDir(),
		SaveToDB:      true,
		HistoryLimit:  DefaultHistoryLimit,
	}
}

// XDGDataDir returns the XDG data directory for privacyguard.
// On Linux: ~/.local/share/privacyguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for privacyguard.
// On Linux: ~/.config/privacyguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.ProbeTimeout <= 0 {
		return ErrInvalidProbeTimeout
	}

	if len(c.IPSources) == 0 {
		return ErrNoIPSources
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.HistoryLimit <= 0 {
		return ErrInvalidHistoryLimit
	}

	if c.ProxyAddress != "" && !IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	if u, err := url.Parse(c.GeoEndpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidGeoEndpoint
	}

	return nil
}

// IsValidProxyAddress reports whether address is "host:port" with a
// non-empty host and a port in 1-65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}
