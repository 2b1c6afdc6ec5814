package log

import (
	"context"
	"io"
	"log/slog"
	"net/netip"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys that should always be sanitized.
// These keys commonly contain credentials that should not be logged.
var sensitiveKeys = map[string]bool{
	// HTTP headers
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Authentication
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"secret_key":    true,

	// Session
	"session":    true,
	"session_id": true,
	"sid":        true,

	// Credentials
	"credential":  true,
	"credentials": true,
	"auth":        true,
}

// identityKeys contains attribute keys whose values identify the user or
// the network they are on. A privacy audit must not leave these behind in
// log files, so they are masked even in verbose mode.
var identityKeys = map[string]bool{
	// Addresses
	"ip":         true,
	"ips":        true,
	"client_ip":  true,
	"addr":       true,
	"address":    true,
	"addresses":  true,
	"server":     true,
	"servers":    true,
	"resolver":   true,
	"candidate":  true,
	"candidates": true,

	// Location
	"location": true,
	"city":     true,
	"region":   true,
	"isp":      true,

	// Browser identity
	"user_agent":  true,
	"useragent":   true,
	"fingerprint": true,
	"canvas":      true,
	"webgl":       true,
	"audio":       true,
	"fonts":       true,
}

// sensitivePatterns contains regex patterns that indicate sensitive values.
// Values matching these patterns will be sanitized regardless of key name.
var sensitivePatterns = []*regexp.Regexp{
	// JWT tokens
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer tokens
	regexp.MustCompile(`(?i)^bearer\s+.+`),

	// Basic auth
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Proxy URLs with inline credentials
	regexp.MustCompile(`(?i)^[a-z0-9+.-]+://[^/@\s]+:[^/@\s]+@`),

	// Private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),
}

// addressPatterns find address-shaped substrings. Every match is confirmed
// with netip before it is masked.
var addressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
	regexp.MustCompile(`(?:[0-9A-Fa-f]{0,4}:){2,7}[0-9A-Fa-f]{0,4}(?:%[0-9A-Za-z]+)?`),
}

// MaskValue is the string used to replace sensitive values.
const MaskValue = "***REDACTED***"

// MaskAddress replaces addresses found inside longer strings.
const MaskAddress = "[ip]"

// SecureHandler wraps an slog.Handler to sanitize sensitive information.
// It intercepts log records and sanitizes attribute values that match
// sensitive key names or value patterns before passing them to the
// underlying handler. IP addresses embedded in strings and errors are
// replaced with MaskAddress; loopback addresses are kept.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because it works with any underlying handler (text or JSON) and every
// package keeps logging through the standard slog API.
type SecureHandler struct {
	// handler is the underlying slog handler that receives sanitized records.
	handler slog.Handler
}

// NewSecureHandler creates a new SecureHandler wrapping the given handler.
// All log attributes will be sanitized before being passed to the underlying handler.
// If handler is nil, the returned SecureHandler will use slog.Default().Handler().
func NewSecureHandler(handler slog.Handler) *SecureHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &SecureHandler{handler: handler}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's message and attributes and passes it to the
// underlying handler.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, MaskAddresses(r.Message), r.PC)

	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})

	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a new handler with the given attributes added.
// Attributes are sanitized before being added.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitizedAttrs := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitizedAttrs[i] = h.sanitizeAttr(a)
	}
	return &SecureHandler{handler: h.handler.WithAttrs(sanitizedAttrs)}
}

// WithGroup returns a new handler with the given group name.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{handler: h.handler.WithGroup(name)}
}

// sanitizeAttr sanitizes a single attribute, recursively handling groups.
func (h *SecureHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		attrs := v.Group()
		sanitizedAttrs := make([]slog.Attr, len(attrs))
		for i, groupAttr := range attrs {
			sanitizedAttrs[i] = h.sanitizeAttr(groupAttr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitizedAttrs...)}
	}

	if isSensitiveKey(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if isSensitiveValue(s) {
			return slog.String(a.Key, MaskValue)
		}
		if masked := MaskAddresses(s); masked != s {
			return slog.String(a.Key, masked)
		}
	case slog.KindAny:
		if err, ok := v.Any().(error); ok && err != nil {
			msg := err.Error()
			if masked := MaskAddresses(msg); masked != msg {
				return slog.String(a.Key, masked)
			}
		}
	}

	return slog.Attr{Key: a.Key, Value: v}
}

// isSensitiveKey reports whether the key names a credential or an identity.
func isSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	if sensitiveKeys[keyLower] || identityKeys[keyLower] {
		return true
	}
	if strings.HasSuffix(keyLower, "_ip") || strings.HasSuffix(keyLower, "_ips") {
		return true
	}
	return containsSensitiveKeyword(keyLower)
}

// containsSensitiveKeyword checks if the key contains sensitive keywords.
// The bare "key" and "ip" keywords are excluded because they cause false
// positives ("primary_key", "description").
func containsSensitiveKeyword(key string) bool {
	sensitiveKeywords := []string{
		"password", "passwd", "secret", "token", "auth", "credential", "private",
	}

	for _, keyword := range sensitiveKeywords {
		if strings.Contains(key, keyword) {
			return true
		}
	}
	return false
}

// isSensitiveValue checks if a value matches sensitive patterns.
func isSensitiveValue(value string) bool {
	for _, pattern := range sensitivePatterns {
		if pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// MaskAddresses replaces every non-loopback IPv4 or IPv6 address in s
// with MaskAddress. Unspecified addresses are kept too.
func MaskAddresses(s string) string {
	for _, pattern := range addressPatterns {
		s = pattern.ReplaceAllStringFunc(s, func(m string) string {
			addr, err := netip.ParseAddr(m)
			if err != nil || addr.IsLoopback() || addr.IsUnspecified() {
				return m
			}
			return MaskAddress
		})
	}
	return s
}

// NewSecureLogger creates a new slog.Logger with secure handling.
// The logger sanitizes sensitive information in all log output.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger creates a new slog.Logger with secure handling
// that outputs JSON format. Useful for structured log aggregation.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}

func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}
