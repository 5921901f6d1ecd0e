package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"tripforge/itinerary"
	"tripforge/logger"
)

// AmadeusClient talks to the Amadeus self-service APIs for flight offers,
// hotel offers and airline reference data.
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	accessToken  string
	tokenExpiry  time.Time
	mu           sync.Mutex
	httpClient   *http.Client
}

var amadeusClient *AmadeusClient

func InitAmadeus() {
	env := os.Getenv("AMADEUS_ENV")
	baseURL := "https://api.amadeus.com"
	if env == "" || env == "test" {
		baseURL = "https://test.api.amadeus.com"
	}

	amadeusClient = &AmadeusClient{
		clientID:     os.Getenv("AMADEUS_CLIENT_ID"),
		clientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
		baseURL:      baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	if amadeusClient.clientID == "" || amadeusClient.clientSecret == "" {
		logger.Get().Warn("AMADEUS_CLIENT_ID or AMADEUS_CLIENT_SECRET not set; flight/hotel enrichment disabled")
		return
	}

	// Pre-warm the token
	if err := amadeusClient.refreshToken(context.Background()); err != nil {
		logger.Get().Warnw("Amadeus token pre-warm failed", "error", err)
	} else {
		logger.Get().Info("Amadeus API authenticated")
	}
}

func GetAmadeusClient() *AmadeusClient {
	return amadeusClient
}

// Configured reports whether credentials are present. An unconfigured client
// is left out of the planner so searches degrade to absent data.
func (c *AmadeusClient) Configured() bool {
	return c != nil && c.clientID != "" && c.clientSecret != ""
}

// ─── OAuth2 Token ─────────────────────────────────────────────────────────────

func (c *AmadeusClient) refreshToken(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseURL+"/v1/security/oauth2/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token request failed (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.mu.Lock()
	c.accessToken = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	c.mu.Unlock()

	return nil
}

func (c *AmadeusClient) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	expired := time.Now().After(c.tokenExpiry)
	token := c.accessToken
	c.mu.Unlock()

	if expired || token == "" {
		if err := c.refreshToken(ctx); err != nil {
			return "", err
		}
		c.mu.Lock()
		token = c.accessToken
		c.mu.Unlock()
	}
	return token, nil
}

func (c *AmadeusClient) doRequest(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth failed: %w", err)
	}

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewBuffer(body))
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("amadeus error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

// ─── Flight Search ────────────────────────────────────────────────────────────

// SearchFlights queries the Flight Offers Search API and returns the provider
// offers verbatim: itineraries, segments, terminals and the priced total.
func (c *AmadeusClient) SearchFlights(ctx context.Context, q itinerary.FlightQuery) ([]itinerary.FlightOffer, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	path := fmt.Sprintf(
		"/v2/shopping/flight-offers?originLocationCode=%s&destinationLocationCode=%s"+
			"&departureDate=%s&returnDate=%s&adults=%d&max=6&currencyCode=USD",
		url.QueryEscape(resolveCityCode(q.Origin)),
		url.QueryEscape(resolveCityCode(q.Destination)),
		url.QueryEscape(q.DepartureDate),
		url.QueryEscape(q.ReturnDate),
		q.Adults,
	)

	body, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("flight search failed: %w", err)
	}

	var resp struct {
		Data []itinerary.FlightOffer `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse flight offers: %w", err)
	}
	return resp.Data, nil
}

// ─── Hotel Search ─────────────────────────────────────────────────────────────

// FindHotels resolves the city's hotel IDs, then fetches available offers for
// the stay window, returning structured candidates plus the window itself.
func (c *AmadeusClient) FindHotels(ctx context.Context, q itinerary.HotelQuery) (*itinerary.HotelBlock, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("amadeus not configured")
	}

	cityCode := resolveCityCode(q.City)
	hotelIDs, err := c.getHotelIDsByCity(ctx, cityCode, q.Stars, q.Amenities)
	if err != nil {
		return nil, fmt.Errorf("hotel list failed: %w", err)
	}
	if len(hotelIDs) == 0 {
		return nil, fmt.Errorf("no hotels found for city %s", cityCode)
	}

	// First 20 IDs only, to stay under the offer endpoint's rate limits.
	if len(hotelIDs) > 20 {
		hotelIDs = hotelIDs[:20]
	}

	hotels, err := c.getHotelOffers(ctx, hotelIDs, q.CheckIn, q.CheckOut, q.Adults)
	if err != nil {
		return nil, err
	}

	return &itinerary.HotelBlock{
		Hotels:   hotels,
		CheckIn:  q.CheckIn,
		CheckOut: q.CheckOut,
		CityCode: cityCode,
	}, nil
}

type amadeusHotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

func (c *AmadeusClient) getHotelIDsByCity(ctx context.Context, cityCode string, stars int, amenities []string) ([]string, error) {
	path := fmt.Sprintf("/v1/reference-data/locations/hotels/by-city?cityCode=%s&radius=5&radiusUnit=KM&hotelSource=ALL",
		url.QueryEscape(cityCode))
	if stars > 0 {
		path += "&ratings=" + strconv.Itoa(stars)
	}
	if len(amenities) > 0 {
		path += "&amenities=" + url.QueryEscape(strings.Join(amenities, ","))
	}

	body, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var resp amadeusHotelListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel list: %w", err)
	}

	ids := make([]string, 0, len(resp.Data))
	for _, h := range resp.Data {
		ids = append(ids, h.HotelID)
	}
	return ids, nil
}

type amadeusHotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID  string `json:"hotelId"`
			Name     string `json:"name"`
			CityCode string `json:"cityCode"`
			Address  struct {
				Lines       []string `json:"lines"`
				CityName    string   `json:"cityName"`
				CountryCode string   `json:"countryCode"`
			} `json:"address"`
			Rating    string   `json:"rating"`
			Amenities []string `json:"amenities"`
		} `json:"hotel"`
		Available bool `json:"available"`
		Offers    []struct {
			Price struct {
				Total    string `json:"total"`
				Currency string `json:"currency"`
			} `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

func (c *AmadeusClient) getHotelOffers(ctx context.Context, hotelIDs []string, checkIn, checkOut string, adults int) ([]itinerary.HotelCandidate, error) {
	path := fmt.Sprintf("/v3/shopping/hotel-offers?hotelIds=%s&checkInDate=%s&checkOutDate=%s&adults=%d&roomQuantity=1&currency=USD&bestRateOnly=true",
		url.QueryEscape(strings.Join(hotelIDs, ",")),
		url.QueryEscape(checkIn),
		url.QueryEscape(checkOut),
		adults,
	)

	body, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, fmt.Errorf("hotel offers failed: %w", err)
	}

	var resp amadeusHotelOffersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hotel offers: %w", err)
	}

	hotels := make([]itinerary.HotelCandidate, 0, len(resp.Data))
	for _, item := range resp.Data {
		if !item.Available || len(item.Offers) == 0 {
			continue
		}

		city := item.Hotel.Address.CityName
		if city == "" {
			city = item.Hotel.CityCode
		}
		full := strings.Join(append(append([]string{}, item.Hotel.Address.Lines...), city), ", ")

		hotels = append(hotels, itinerary.HotelCandidate{
			ID:     item.Hotel.HotelID,
			Name:   item.Hotel.Name,
			Rating: parseStarRating(item.Hotel.Rating),
			Address: itinerary.HotelAddress{
				Lines:       item.Hotel.Address.Lines,
				City:        city,
				CountryCode: item.Hotel.Address.CountryCode,
				Full:        full,
			},
			Amenities:  item.Hotel.Amenities,
			PriceTotal: parsePrice(item.Offers[0].Price.Total),
			Currency:   item.Offers[0].Price.Currency,
		})
	}

	return hotels, nil
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func parsePrice(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseStarRating clamps the provider's string rating to the 1-5 scale,
// defaulting to 3.
func parseStarRating(s string) int {
	r, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || r < 1 {
		return 3
	}
	if r > 5 {
		r = 5
	}
	return r
}

// resolveCityCode maps airport IATA codes to the city codes the hotel and
// flight endpoints expect. Unknown codes pass through unchanged.
func resolveCityCode(code string) string {
	mapping := map[string]string{
		"LHR": "LON", "LGW": "LON", "STN": "LON", "LTN": "LON",
		"CDG": "PAR", "ORY": "PAR",
		"JFK": "NYC", "LGA": "NYC", "EWR": "NYC",
		"FCO": "ROM", "CIA": "ROM",
		"NRT": "TYO", "HND": "TYO",
		"SXF": "BER",
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if city, ok := mapping[code]; ok {
		return city
	}
	return code
}
