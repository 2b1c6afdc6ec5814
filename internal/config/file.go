package config

import "time"

// ProbeSettings is the "probes" section of the configuration file.
type ProbeSettings struct {
	// Timeout is a Go duration string such as "10s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string `yaml:"proxy,omitempty"`

	IPSources     []string `yaml:"ipSources,omitempty"`
	IPv4Sources   []string `yaml:"ipv4Sources,omitempty"`
	IPv6Sources   []string `yaml:"ipv6Sources,omitempty"`
	GeoEndpoint   string   `yaml:"geoEndpoint,omitempty"`
	STUNServers   []string `yaml:"stunServers,omitempty"`
	ResolverHosts []string `yaml:"resolverHosts,omitempty"`

	// SignalsFile is the browser-exported signals JSON.
	SignalsFile string `yaml:"signalsFile,omitempty"`

	UserAgent string `yaml:"userAgent,omitempty"`
}

// HistorySettings is the "history" section of the configuration file.
type HistorySettings struct {
	// Dir overrides the XDG data directory.
	Dir string `yaml:"dir,omitempty"`

	// Limit is the number of runs to keep.
	Limit int `yaml:"limit,omitempty"`

	// Disabled turns history off entirely.
	Disabled bool `yaml:"disabled,omitempty"`
}

// ReportSettings is the "report" section of the configuration file.
type ReportSettings struct {
	// Format is one of "text", "markdown" or "json".
	Format string `yaml:"format,omitempty"`

	// Output is a file path. Empty means stdout.
	Output string `yaml:"output,omitempty"`
}

// File represents the structure of the .privacyguard configuration file.
type File struct {
	Probes  ProbeSettings   `yaml:"probes,omitempty"`
	History HistorySettings `yaml:"history,omitempty"`
	Report  ReportSettings  `yaml:"report,omitempty"`
}

// Apply overlays the file's non-zero settings onto cfg.
// Settings absent from the file keep their current value, so CLI flags
// applied afterwards still take precedence.
func (cf *File) Apply(cfg *Config) {
	p := cf.Probes
	if p.Timeout > 0 {
		cfg.ProbeTimeout = p.Timeout
	}
	if p.Proxy != "" {
		cfg.ProxyAddress = p.Proxy
	}
	if len(p.IPSources) > 0 {
		cfg.IPSources = p.IPSources
	}
	if len(p.IPv4Sources) > 0 {
		cfg.IPv4Sources = p.IPv4Sources
	}
	if len(p.IPv6Sources) > 0 {
		cfg.IPv6Sources = p.IPv6Sources
	}
	if p.GeoEndpoint != "" {
		cfg.GeoEndpoint = p.GeoEndpoint
	}
	if len(p.STUNServers) > 0 {
		cfg.STUNServers = p.STUNServers
	}
	if len(p.ResolverHosts) > 0 {
		cfg.ResolverHosts = p.ResolverHosts
	}
	if p.SignalsFile != "" {
		cfg.SignalsFile = p.SignalsFile
	}
	if p.UserAgent != "" {
		cfg.UserAgent = p.UserAgent
	}

	h := cf.History
	if h.Dir != "" {
		cfg.DBDir = h.Dir
	}
	if h.Limit > 0 {
		cfg.HistoryLimit = h.Limit
	}
	if h.Disabled {
		cfg.SaveToDB = false
	}

	r := cf.Report
	switch r.Format {
	case "json":
		cfg.JSONReport, cfg.MarkdownReport = true, false
	case "markdown":
		cfg.JSONReport, cfg.MarkdownReport = false, true
	case "text":
		cfg.JSONReport, cfg.MarkdownReport = false, false
	}
	if r.Output != "" {
		cfg.ReportFile = r.Output
	}
}
