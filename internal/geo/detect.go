// Package geo guesses the user's location from their public IP address when
// no city or coordinates are configured.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
)

// Location is a detected position plus the timezone the lookup reported.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// API returns the coordinates as an API location. Coordinates are always
// preferred over the detected city name, which is often a district.
func (l Location) API() api.Location {
	return api.Location{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Label is "City, Country" when both are known, otherwise "".
func (l Location) Label() string {
	if l.City == "" || l.Country == "" {
		return ""
	}
	return l.City + ", " + l.Country
}

type ipAPIResponse struct {
	Status   string  `json:"status"`
	Message  string  `json:"message"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Timezone string  `json:"timezone"`
}

// geoAPIURL is a variable so tests can point it at an httptest server.
var geoAPIURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

const detectTimeout = 5 * time.Second

// DetectLocation asks ip-api.com (free, keyless) where the caller is.
func DetectLocation(ctx context.Context) (*Location, error) {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, geoAPIURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geolocation request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}

	return &Location{
		Latitude:  result.Lat,
		Longitude: result.Lon,
		City:      result.City,
		Country:   result.Country,
		Timezone:  result.Timezone,
	}, nil
}
