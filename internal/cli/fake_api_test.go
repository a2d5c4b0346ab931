package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
)

// Ramadan 1447 in the fake API runs 2026-02-19 to 2026-03-20.
const (
	fakeRamadanStart = "2026-02-19"
	fakeRamadanDays  = 30
	fakeTZ           = "Asia/Jakarta"
)

var fakeTimings = api.Timings{
	Imsak:   "04:20 (WIB)",
	Fajr:    "04:30 (WIB)",
	Sunrise: "05:45 (WIB)",
	Dhuhr:   "11:55 (WIB)",
	Asr:     "15:10 (WIB)",
	Sunset:  "17:58 (WIB)",
	Maghrib: "17:58 (WIB)",
	Isha:    "19:08 (WIB)",
}

// fakeHijri labels key: Ramadan days carry their day number, everything
// else is put in Shawwal.
func fakeHijri(key string) api.HijriDate {
	h := api.HijriDate{Year: "1447", Month: api.HijriMonth{Number: 10, En: "Shawwāl"}, Day: "1"}
	offset, _ := dates.DaysBetween(fakeRamadanStart, key)
	if offset >= 0 && offset < fakeRamadanDays {
		h.Month = api.HijriMonth{Number: 9, En: "Ramaḍān"}
		h.Day = strconv.Itoa(offset + 1)
	}
	return h
}

func fakeDay(key string) api.Data {
	t, _ := dates.ParseKey(key)
	apiDate, _ := dates.APIDate(key)
	return api.Data{
		Timings: fakeTimings,
		Date: api.DateInfo{
			Hijri: fakeHijri(key),
			Gregorian: api.GregorianDate{
				Date:  apiDate,
				Day:   t.Format("02"),
				Month: api.GregorianMonth{Number: int(t.Month()), En: t.Month().String()},
				Year:  t.Format("2006"),
			},
		},
		Meta: api.Meta{Latitude: -6.2088, Longitude: 106.8456, Timezone: fakeTZ},
	}
}

// fakeAPI serves the endpoints the commands call and counts requests.
type fakeAPI struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

func (f *fakeAPI) hit(endpoint string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hits[endpoint]++
}

// count reports how many requests endpoint has served.
func (f *fakeAPI) count(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[endpoint]
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{hits: map[string]int{}}

	send := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}
	segments := func(r *http.Request) []string {
		return strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/timingsByCity/", func(w http.ResponseWriter, r *http.Request) {
		f.hit("timings")
		key, err := dates.ParseAPIDate(segments(r)[1])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		send(w, api.Response{Code: 200, Status: "OK", Data: fakeDay(key)})
	})
	mux.HandleFunc("/calendarByCity/", func(w http.ResponseWriter, r *http.Request) {
		f.hit("calendar")
		seg := segments(r)
		year, _ := strconv.Atoi(seg[1])
		month, _ := strconv.Atoi(seg[2])
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		var days []api.Data
		for d := first; d.Month() == first.Month(); d = d.AddDate(0, 0, 1) {
			days = append(days, fakeDay(d.Format(dates.KeyLayout)))
		}
		send(w, api.CalendarResponse{Code: 200, Status: "OK", Data: days})
	})
	mux.HandleFunc("/hijriCalendarByCity/", func(w http.ResponseWriter, r *http.Request) {
		f.hit("hijriCalendar")
		seg := segments(r)
		if seg[1] != "1447" || seg[2] != "9" {
			send(w, api.CalendarResponse{Code: 200, Status: "OK"})
			return
		}
		var days []api.Data
		for i := fakeRamadanDays - 1; i >= 0; i-- {
			key, _ := dates.AddDays(fakeRamadanStart, i)
			days = append(days, fakeDay(key))
		}
		send(w, api.CalendarResponse{Code: 200, Status: "OK", Data: days})
	})
	mux.HandleFunc("/gToH/", func(w http.ResponseWriter, r *http.Request) {
		f.hit("gToH")
		key, err := dates.ParseAPIDate(segments(r)[1])
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		send(w, api.ConvertResponse{Code: 200, Status: "OK", Data: api.ConvertData{Hijri: fakeHijri(key)}})
	})
	mux.HandleFunc("/methods", func(w http.ResponseWriter, r *http.Request) {
		f.hit("methods")
		send(w, api.MethodsResponse{Code: 200, Status: "OK", Data: map[string]api.MethodInfo{
			"MWL":     {ID: 3, Name: "Muslim World League"},
			"ISNA":    {ID: 2, Name: "Islamic Society of North America (ISNA)"},
			"CUSTOM":  {ID: 99, Name: "Custom"},
			"UNNAMED": {ID: 50},
		}})
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

// testEnv isolates config, cache and data dirs, pins the clock and points
// the API client at baseURL.
func testEnv(t *testing.T, now time.Time, baseURL string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	prevClock, prevClient := clock, newAPIClient
	clock = dates.Fixed(now)
	newAPIClient = func() *api.Client {
		c := api.NewClient()
		c.BaseURL = baseURL
		return c
	}
	t.Cleanup(func() {
		clock = prevClock
		newAPIClient = prevClient
	})
}

// jakarta returns the instant at hh:mm on 2026-03-01 in Jakarta.
func jakarta(t *testing.T, hh, mm int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(fakeTZ)
	require.NoError(t, err)
	return time.Date(2026, 3, 1, hh, mm, 0, 0, loc)
}

// run executes the CLI in-process and returns what it wrote to stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append(args, "--no-color", "--quiet"))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// runLogged is run with warnings kept; it returns stdout and stderr.
func runLogged(t *testing.T, args ...string) (string, string) {
	t.Helper()
	root := NewRootCmd("test")
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append(args, "--no-color"))
	require.NoError(t, root.ExecuteContext(context.Background()), "args: %v\nstderr: %s", args, errOut.String())
	return out.String(), errOut.String()
}

// mustRun is run that fails the test on error.
func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, fmt.Sprintf("args: %v\noutput: %s", args, out))
	return out
}

// located adds the fake location and timezone flags.
func located(args ...string) []string {
	return append(args, "--city", "Jakarta", "--country", "Indonesia", "--timezone", fakeTZ)
}
