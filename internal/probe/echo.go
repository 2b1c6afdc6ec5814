package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
)

// maxBodySize caps every probe response body.
const maxBodySize = 1 << 20

// echoResponse covers the JSON shapes returned by the supported echo
// services: ipify and myip use "ip", httpbin uses "origin", and a few
// mirrors use "ip_addr".
type echoResponse struct {
	IP     string `json:"ip"`
	Origin string `json:"origin"`
	IPAddr string `json:"ip_addr"`
}

// getBody performs a GET and returns the body of a 2xx response.
func getBody(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json,text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s: http status %d", rawURL, resp.StatusCode)
	}
	return body, nil
}

// FetchAddress asks an echo service for the caller's public address.
// JSON and plain-text answers are both accepted. The answer must parse as
// an IP address.
func FetchAddress(ctx context.Context, client *http.Client, rawURL string) (netip.Addr, error) {
	body, err := getBody(ctx, client, rawURL)
	if err != nil {
		return netip.Addr{}, err
	}
	return parseEchoBody(body)
}

// parseEchoBody extracts an address from an echo response body.
// httpbin reports a comma-separated chain behind proxies; the first entry is
// the client.
func parseEchoBody(body []byte) (netip.Addr, error) {
	text := strings.TrimSpace(string(body))

	var parsed echoResponse
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &parsed); err != nil {
			return netip.Addr{}, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
		}
		switch {
		case parsed.IP != "":
			text = parsed.IP
		case parsed.Origin != "":
			text = parsed.Origin
		default:
			text = parsed.IPAddr
		}
	}

	first, _, _ := strings.Cut(text, ",")
	addr, err := netip.ParseAddr(strings.TrimSpace(first))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%w: %q", ErrInvalidAddress, truncate(text, 64))
	}
	return addr.Unmap(), nil
}

// sourceName returns the host name of an echo URL, used to label
// observations.
func sourceName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return rawURL
	}
	return u.Hostname()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
