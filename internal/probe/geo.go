package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/privacyguard/internal/model"
)

// geoFields restricts the ip-api.com answer to what privacyguard uses.
const geoFields = "status,message,country,countryCode,regionName,city,isp,org,proxy,hosting,query"

// geoResponse is the ip-api.com JSON answer.
type geoResponse struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	RegionName  string `json:"regionName"`
	City        string `json:"city"`
	ISP         string `json:"isp"`
	Org         string `json:"org"`
	Proxy       bool   `json:"proxy"`
	Hosting     bool   `json:"hosting"`
	Query       string `json:"query"`
}

// Geo is the geolocation of one address.
type Geo struct {
	Location model.Location

	// Proxy is true when the address is a known VPN, proxy or Tor exit.
	Proxy bool

	// Hosting is true when the address belongs to a hosting provider.
	Hosting bool
}

// Geolocator looks up addresses on an ip-api.com compatible endpoint.
type Geolocator struct {
	client   *http.Client
	endpoint string
}

// NewGeolocator creates a Geolocator. The address is appended to endpoint,
// so it should end with a slash.
func NewGeolocator(client *http.Client, endpoint string) *Geolocator {
	return &Geolocator{client: client, endpoint: endpoint}
}

// Lookup geolocates addr. A "fail" status from the API is returned as
// ErrGeolocationFailed with the API's message.
func (g *Geolocator) Lookup(ctx context.Context, addr string) (Geo, error) {
	u := strings.TrimSuffix(g.endpoint, "/") + "/" + url.PathEscape(addr) + "?fields=" + geoFields
	body, err := getBody(ctx, g.client, u)
	if err != nil {
		return Geo{}, err
	}

	var resp geoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Geo{}, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if resp.Status != "success" {
		return Geo{}, fmt.Errorf("%w: %s: %s", ErrGeolocationFailed, addr, resp.Message)
	}

	isp := resp.ISP
	if isp == "" {
		isp = resp.Org
	}
	return Geo{
		Location: model.Location{
			Country:     resp.Country,
			CountryCode: resp.CountryCode,
			Region:      resp.RegionName,
			City:        resp.City,
			ISP:         isp,
		},
		Proxy:   resp.Proxy,
		Hosting: resp.Hosting,
	}, nil
}
