package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// AirlineDirectory resolves IATA carrier codes to airline names and check-in
// URLs via the Amadeus reference-data endpoints, with a static fallback table
// and a TTL cache so repeated codes cost one lookup.
type AirlineDirectory struct {
	client *AmadeusClient
	cache  *gocache.Cache
}

var airlineDirectory *AirlineDirectory

func InitAirlines() {
	airlineDirectory = &AirlineDirectory{
		client: GetAmadeusClient(),
		cache:  gocache.New(12*time.Hour, time.Hour),
	}
}

func GetAirlineDirectory() *AirlineDirectory {
	return airlineDirectory
}

// staticAirlineNames covers the carriers most itineraries hit even when the
// reference-data endpoint is unreachable.
var staticAirlineNames = map[string]string{
	"TK": "Turkish Airlines",
	"LH": "Lufthansa",
	"AF": "Air France",
	"BA": "British Airways",
	"EK": "Emirates",
	"QR": "Qatar Airways",
	"AI": "Air India",
	"6E": "IndiGo",
	"UK": "Vistara",
	"FR": "Ryanair",
	"U2": "EasyJet",
	"W6": "Wizz Air",
	"FZ": "FlyDubai",
	"UA": "United Airlines",
	"AA": "American Airlines",
	"DL": "Delta Air Lines",
	"KL": "KLM",
	"IB": "Iberia",
	"AZ": "ITA Airways",
	"OS": "Austrian Airlines",
	"LX": "Swiss International Air Lines",
	"SQ": "Singapore Airlines",
	"CX": "Cathay Pacific",
	"NH": "ANA",
	"JL": "Japan Airlines",
	"EY": "Etihad Airways",
	"MS": "EgyptAir",
	"ET": "Ethiopian Airlines",
}

// AirlineNames resolves a batch of carrier codes. Codes the API cannot
// resolve fall back to the static table; completely unknown codes are simply
// absent from the result.
func (d *AirlineDirectory) AirlineNames(ctx context.Context, codes []string) (map[string]string, error) {
	names := map[string]string{}

	var misses []string
	for _, code := range codes {
		if v, ok := d.cache.Get("name:" + code); ok {
			names[code] = v.(string)
		} else {
			misses = append(misses, code)
		}
	}
	if len(misses) == 0 {
		return names, nil
	}

	fetched, err := d.fetchAirlineNames(ctx, misses)
	for _, code := range misses {
		name, ok := fetched[code]
		if !ok {
			name, ok = staticAirlineNames[code]
		}
		if ok {
			names[code] = name
			d.cache.Set("name:"+code, name, gocache.DefaultExpiration)
		}
	}

	// The static table may have covered every miss; only report an error
	// when it left gaps.
	if err != nil && len(names) < len(codes) {
		return names, err
	}
	return names, nil
}

func (d *AirlineDirectory) fetchAirlineNames(ctx context.Context, codes []string) (map[string]string, error) {
	if !d.client.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	path := "/v1/reference-data/airlines?airlineCodes=" + url.QueryEscape(strings.Join(codes, ","))
	body, err := d.client.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []struct {
			IataCode     string `json:"iataCode"`
			CommonName   string `json:"commonName"`
			BusinessName string `json:"businessName"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse airline data: %w", err)
	}

	names := map[string]string{}
	for _, a := range resp.Data {
		name := a.CommonName
		if name == "" {
			name = a.BusinessName
		}
		if name != "" {
			names[a.IataCode] = name
		}
	}
	return names, nil
}

// CheckInURL resolves the web check-in link for one carrier.
func (d *AirlineDirectory) CheckInURL(ctx context.Context, code string) (string, error) {
	if v, ok := d.cache.Get("checkin:" + code); ok {
		return v.(string), nil
	}
	if !d.client.Configured() {
		return "", fmt.Errorf("amadeus not configured")
	}

	path := "/v2/reference-data/urls/checkin-links?airlineCode=" + url.QueryEscape(code)
	body, err := d.client.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return "", err
	}

	var resp struct {
		Data []struct {
			Href string `json:"href"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("failed to parse check-in links: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].Href == "" {
		return "", nil
	}

	d.cache.Set("checkin:"+code, resp.Data[0].Href, gocache.DefaultExpiration)
	return resp.Data[0].Href, nil
}
