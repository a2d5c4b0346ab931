package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// RamadanMonth is the Hijri month number of Ramadan.
const RamadanMonth = 9

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

// Location identifies where prayer times are computed for: either a
// coordinate pair or a city/country pair.
type Location struct {
	Latitude  float64
	Longitude float64
	City      string
	Country   string
}

// ByCity reports whether the location should be queried by city name.
func (l Location) ByCity() bool {
	return l.City != "" && l.Latitude == 0 && l.Longitude == 0
}

// FetchTimings fetches one day's timings using the location's mode.
func (c *Client) FetchTimings(date time.Time, loc Location, method, school int) (*Response, error) {
	if loc.ByCity() {
		return c.FetchByCity(date, loc.City, loc.Country, method, school)
	}
	return c.FetchByCoordinates(date, loc.Latitude, loc.Longitude, method, school)
}

// FetchByCoordinates fetches prayer times for the given date and coordinates.
func (c *Client) FetchByCoordinates(date time.Time, lat, lon float64, method, school int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp Response
	if err := c.doRequest(endpoint, coordParams(lat, lon, method, school), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchByCity fetches prayer times for the given date, city, and country.
func (c *Client) FetchByCity(date time.Time, city, country string, method, school int) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timingsByCity/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp Response
	if err := c.doRequest(endpoint, cityParams(city, country, method, school), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCalendar fetches a Gregorian month of timings using the location's mode.
func (c *Client) FetchCalendar(year, month int, loc Location, method, school int) (*CalendarResponse, error) {
	if loc.ByCity() {
		return c.FetchCalendarByCity(year, month, loc.City, loc.Country, method, school)
	}
	return c.FetchCalendarByCoordinates(year, month, loc.Latitude, loc.Longitude, method, school)
}

// FetchCalendarByCoordinates fetches a whole Gregorian month of timings.
func (c *Client) FetchCalendarByCoordinates(year, month int, lat, lon float64, method, school int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, month)

	var resp CalendarResponse
	if err := c.doRequest(endpoint, coordParams(lat, lon, method, school), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCalendarByCity fetches a whole Gregorian month of timings by city.
func (c *Client) FetchCalendarByCity(year, month int, city, country string, method, school int) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendarByCity/%d/%d", c.BaseURL, year, month)

	var resp CalendarResponse
	if err := c.doRequest(endpoint, cityParams(city, country, method, school), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchHijriCalendar fetches a whole Hijri month of timings, one entry per
// day, using the location's mode.
func (c *Client) FetchHijriCalendar(year, month int, loc Location, method, school int) (*CalendarResponse, error) {
	path := "hijriCalendar"
	params := coordParams(loc.Latitude, loc.Longitude, method, school)
	if loc.ByCity() {
		path = "hijriCalendarByCity"
		params = cityParams(loc.City, loc.Country, method, school)
	}
	endpoint := fmt.Sprintf("%s/%s/%d/%d", c.BaseURL, path, year, month)

	var resp CalendarResponse
	if err := c.doRequest(endpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchHijriForDate converts a Gregorian date to its Hijri equivalent.
func (c *Client) FetchHijriForDate(date time.Time) (*ConvertResponse, error) {
	endpoint := fmt.Sprintf("%s/gToH/%s", c.BaseURL, date.Format("02-01-2006"))

	var resp ConvertResponse
	if err := c.doRequest(endpoint, url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchMethods lists the calculation methods the API currently supports.
func (c *Client) FetchMethods() (*MethodsResponse, error) {
	var resp MethodsResponse
	if err := c.doRequest(c.BaseURL+"/methods", url.Values{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func coordParams(lat, lon float64, method, school int) url.Values {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	setMethodSchool(params, method, school)
	return params
}

func cityParams(city, country string, method, school int) url.Values {
	params := url.Values{}
	params.Set("city", city)
	params.Set("country", country)
	setMethodSchool(params, method, school)
	return params
}

// setMethodSchool adds method and school unless they are -1 (API default).
func setMethodSchool(params url.Values, method, school int) {
	if method >= 0 {
		params.Set("method", fmt.Sprintf("%d", method))
	}
	if school >= 0 {
		params.Set("school", fmt.Sprintf("%d", school))
	}
}

func (c *Client) doRequest(endpoint string, params url.Values, out envelope) error {
	reqURL := endpoint
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", endpoint, params.Encode())
	}

	resp, err := c.httpClient.Get(reqURL)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}

	if code, status := out.apiStatus(); code != 200 {
		return fmt.Errorf("API error: code=%d status=%s", code, status)
	}

	return nil
}
