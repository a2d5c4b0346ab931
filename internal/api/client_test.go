package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

// sampleData returns one day of Al Adhan data for testing.
func sampleData(gregorian string, hijriDay int) Data {
	return Data{
		Timings: Timings{
			Imsak:   "04:21 (WIB)",
			Fajr:    "04:31 (WIB)",
			Sunrise: "05:46 (WIB)",
			Dhuhr:   "12:01 (WIB)",
			Asr:     "15:13 (WIB)",
			Sunset:  "18:11 (WIB)",
			Maghrib: "18:11 (WIB)",
			Isha:    "19:22 (WIB)",
		},
		Date: DateInfo{
			Readable: "19 Feb 2026",
			Gregorian: GregorianDate{
				Date: gregorian,
			},
			Hijri: HijriDate{
				Day:   fmt.Sprintf("%02d", hijriDay),
				Month: HijriMonth{Number: 9, En: "Ramaḍān"},
				Year:  "1447",
			},
		},
		Meta: Meta{
			Latitude:  -6.2,
			Longitude: 106.8,
			Timezone:  "Asia/Jakarta",
			Method:    MethodInfo{ID: 20, Name: "KEMENAG"},
		},
	}
}

// sampleResponse returns a valid single-day response.
func sampleResponse() Response {
	return Response{Code: 200, Status: "OK", Data: sampleData("19-02-2026", 1)}
}

// sampleCalendarResponse returns a valid month response with days entries.
func sampleCalendarResponse(days int) CalendarResponse {
	data := make([]Data, days)
	for i := range data {
		data[i] = sampleData(fmt.Sprintf("%02d-02-2026", i+1), i+1)
	}
	return CalendarResponse{Code: 200, Status: "OK", Data: data}
}

// newTestServer serves body as JSON and records the request it received.
func newTestServer(t *testing.T, body any) (*Client, *url.URL) {
	t.Helper()
	captured := &url.URL{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = *r.URL
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(server.Close)

	c := NewClient()
	c.BaseURL = server.URL
	return c, captured
}

func TestNewClient(t *testing.T) {
	c := NewClient()
	if c == nil {
		t.Fatal("NewClient returned nil")
	}
	if c.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", c.BaseURL, defaultBaseURL)
	}
}

// ---------------------------------------------------------------------------
// Request shape per endpoint
// ---------------------------------------------------------------------------

func TestEndpoints_PathAndParams(t *testing.T) {
	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	coords := Location{Latitude: -6.2, Longitude: 106.8}
	city := Location{City: "Jakarta", Country: "Indonesia"}

	tests := []struct {
		name       string
		body       any
		call       func(c *Client) error
		wantPath   string
		wantParams map[string]string
	}{
		{
			name: "timings by coordinates",
			body: sampleResponse(),
			call: func(c *Client) error {
				_, err := c.FetchByCoordinates(date, -6.2, 106.8, 20, 0)
				return err
			},
			wantPath:   "/timings/05-03-2026",
			wantParams: map[string]string{"latitude": "-6.200000", "longitude": "106.800000", "method": "20", "school": "0"},
		},
		{
			name: "timings dispatch by city",
			body: sampleResponse(),
			call: func(c *Client) error {
				_, err := c.FetchTimings(date, city, -1, -1)
				return err
			},
			wantPath:   "/timingsByCity/05-03-2026",
			wantParams: map[string]string{"city": "Jakarta", "country": "Indonesia", "method": "", "school": ""},
		},
		{
			name: "calendar dispatch by coordinates",
			body: sampleCalendarResponse(28),
			call: func(c *Client) error {
				_, err := c.FetchCalendar(2026, 2, coords, 2, 1)
				return err
			},
			wantPath:   "/calendar/2026/2",
			wantParams: map[string]string{"method": "2", "school": "1"},
		},
		{
			name: "calendar by city",
			body: sampleCalendarResponse(31),
			call: func(c *Client) error {
				_, err := c.FetchCalendarByCity(2026, 3, "London", "UK", -1, -1)
				return err
			},
			wantPath:   "/calendarByCity/2026/3",
			wantParams: map[string]string{"city": "London", "country": "UK"},
		},
		{
			name: "hijri calendar by coordinates",
			body: sampleCalendarResponse(30),
			call: func(c *Client) error {
				_, err := c.FetchHijriCalendar(1447, RamadanMonth, coords, 20, -1)
				return err
			},
			wantPath:   "/hijriCalendar/1447/9",
			wantParams: map[string]string{"latitude": "-6.200000", "method": "20", "school": ""},
		},
		{
			name: "hijri calendar by city",
			body: sampleCalendarResponse(29),
			call: func(c *Client) error {
				_, err := c.FetchHijriCalendar(1447, RamadanMonth, city, -1, -1)
				return err
			},
			wantPath:   "/hijriCalendarByCity/1447/9",
			wantParams: map[string]string{"city": "Jakarta"},
		},
		{
			name: "gregorian to hijri",
			body: ConvertResponse{Code: 200, Status: "OK"},
			call: func(c *Client) error {
				_, err := c.FetchHijriForDate(date)
				return err
			},
			wantPath: "/gToH/05-03-2026",
		},
		{
			name: "methods",
			body: MethodsResponse{Code: 200, Status: "OK"},
			call: func(c *Client) error {
				_, err := c.FetchMethods()
				return err
			},
			wantPath: "/methods",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, reqURL := newTestServer(t, tt.body)
			if err := tt.call(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if reqURL.Path != tt.wantPath {
				t.Errorf("path = %q, want %q", reqURL.Path, tt.wantPath)
			}
			q := reqURL.Query()
			for k, want := range tt.wantParams {
				if got := q.Get(k); got != want {
					t.Errorf("param %s = %q, want %q", k, got, want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Decoding
// ---------------------------------------------------------------------------

func TestFetchTimings_Decodes(t *testing.T) {
	c, _ := newTestServer(t, sampleResponse())

	got, err := c.FetchTimings(time.Now(), Location{Latitude: 1, Longitude: 1}, -1, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Data.Timings.Isha != "19:22 (WIB)" {
		t.Errorf("Isha = %q, want %q", got.Data.Timings.Isha, "19:22 (WIB)")
	}
	if got.Data.Meta.Timezone != "Asia/Jakarta" {
		t.Errorf("Timezone = %q, want %q", got.Data.Meta.Timezone, "Asia/Jakarta")
	}
}

func TestFetchHijriCalendar_Decodes(t *testing.T) {
	c, _ := newTestServer(t, sampleCalendarResponse(30))

	got, err := c.FetchHijriCalendar(1447, RamadanMonth, Location{City: "Jakarta", Country: "ID"}, -1, -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Data) != 30 {
		t.Fatalf("got %d days, want 30", len(got.Data))
	}
	if got.Data[29].Date.Gregorian.Date != "30-02-2026" {
		t.Errorf("last gregorian = %q", got.Data[29].Date.Gregorian.Date)
	}
}

func TestFetchHijriForDate_Decodes(t *testing.T) {
	raw := `{"code":200,"status":"OK","data":{"hijri":{"date":"01-09-1447","day":"01","month":{"number":9,"en":"Ramaḍān"},"year":"1447"},"gregorian":{"date":"19-02-2026"}}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(raw))
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	got, err := c.FetchHijriForDate(time.Date(2026, 2, 19, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Data.Hijri.IsRamadan() {
		t.Errorf("month = %d, want Ramadan", got.Data.Hijri.Month.Number)
	}
	if got.Data.Hijri.Day != "01" || got.Data.Hijri.Year != "1447" {
		t.Errorf("hijri = %+v", got.Data.Hijri)
	}
}

func TestFetchMethods_Decodes(t *testing.T) {
	raw := `{"code":200,"status":"OK","data":{"MWL":{"id":3,"name":"Muslim World League"},"KEMENAG":{"id":20,"name":"Kementerian Agama Republik Indonesia"},"CUSTOM":{"id":99}}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(raw))
	}))
	defer server.Close()

	c := NewClient()
	c.BaseURL = server.URL

	got, err := c.FetchMethods()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Data) != 3 {
		t.Fatalf("got %d methods, want 3", len(got.Data))
	}
	if got.Data["KEMENAG"].ID != 20 {
		t.Errorf("KEMENAG id = %d, want 20", got.Data["KEMENAG"].ID)
	}
}

// ---------------------------------------------------------------------------
// Failure modes
// ---------------------------------------------------------------------------

func TestFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantSub string
	}{
		{
			name: "http error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			},
			wantSub: "503",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			wantSub: "decode",
		},
		{
			name: "api error code",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(CalendarResponse{Code: 400, Status: "Bad Request"})
			},
			wantSub: "400",
		},
	}

	calls := map[string]func(c *Client) error{
		"timings": func(c *Client) error {
			_, err := c.FetchByCoordinates(time.Now(), 51.5, -0.1, -1, -1)
			return err
		},
		"hijri calendar": func(c *Client) error {
			_, err := c.FetchHijriCalendar(1447, 9, Location{Latitude: 51.5}, -1, -1)
			return err
		},
		"convert": func(c *Client) error {
			_, err := c.FetchHijriForDate(time.Now())
			return err
		},
	}

	for _, tt := range tests {
		for callName, call := range calls {
			t.Run(tt.name+"/"+callName, func(t *testing.T) {
				server := httptest.NewServer(tt.handler)
				defer server.Close()

				c := NewClient()
				c.BaseURL = server.URL

				err := call(c)
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.wantSub) {
					t.Errorf("error should mention %q, got: %v", tt.wantSub, err)
				}
			})
		}
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	c := NewClient()
	c.BaseURL = "http://127.0.0.1:1" // nothing listening

	if _, err := c.FetchMethods(); err == nil {
		t.Fatal("expected error for connection refused, got nil")
	}
}

func TestLocation_ByCity(t *testing.T) {
	if !(Location{City: "Jakarta", Country: "ID"}).ByCity() {
		t.Error("city-only location should query by city")
	}
	if (Location{Latitude: -6.2, Longitude: 106.8, City: "Jakarta"}).ByCity() {
		t.Error("coordinates should take precedence over city")
	}
	if (Location{}).ByCity() {
		t.Error("empty location should not query by city")
	}
}
