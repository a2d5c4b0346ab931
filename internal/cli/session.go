package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/cache"
	"github.com/smokyabdulrahman/prayer-tracker/internal/config"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/geo"
	"github.com/smokyabdulrahman/prayer-tracker/internal/prayer"
	"github.com/smokyabdulrahman/prayer-tracker/internal/store"
)

// newAPIClient is swapped in tests for a client aimed at an httptest server.
var newAPIClient = api.NewClient

// resolvedLocation is where timings are computed for, plus whatever the
// user or geolocation told us about it.
type resolvedLocation struct {
	api.Location
	// Timezone is a hint from geo-detection; empty otherwise.
	Timezone string
	// Label is the human name, e.g. "Jakarta, Indonesia".
	Label string
}

// fetchResult holds the data returned from a prayer times fetch.
type fetchResult struct {
	Timings  api.Timings
	Meta     api.Meta
	DateInfo api.DateInfo
}

// session carries the merged config and lazily built collaborators for one
// command invocation.
type session struct {
	ctx    context.Context
	cfg    *config.Config
	cache  *cache.Cache
	client *api.Client
	method int
	school int

	loc    *resolvedLocation
	locErr error
}

func newSession(cmd *cobra.Command) (*session, error) {
	cfg := effectiveConfig(cmd)
	if cfg.Timezone != "" {
		if _, err := time.LoadLocation(cfg.Timezone); err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
		}
	}

	s := &session{
		ctx:    cmd.Context(),
		cfg:    cfg,
		client: newAPIClient(),
		method: cfg.MethodOrDefault(-1),
		school: cfg.SchoolOrDefault(-1),
	}

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		// Cache init failure is non-fatal; we just skip caching.
		s.log().Warn().Err(err).Msg("cache disabled")
	} else {
		s.cache = c
	}
	return s, nil
}

func (s *session) log() *zerolog.Logger {
	return zerolog.Ctx(s.ctx)
}

// selectedPrayers returns the prayers to display: config or defaults.
func (s *session) selectedPrayers() []string {
	return splitPrayers(s.cfg.Prayers, prayer.DefaultPrayerNames)
}

func splitPrayers(list string, def []string) []string {
	if strings.TrimSpace(list) == "" {
		return def
	}
	names := strings.Split(list, ",")
	for i := range names {
		names[i] = strings.TrimSpace(names[i])
	}
	return names
}

// timeLayout is the Go layout matching the configured time format.
func (s *session) timeLayout() string {
	if s.cfg.TimeFormat == "12h" {
		return "3:04 PM"
	}
	return "15:04"
}

// location determines the effective location once per session.
// Priority: CLI flags > config > cached geolocation > IP auto-detect.
func (s *session) location() (resolvedLocation, error) {
	if s.loc != nil || s.locErr != nil {
		if s.locErr != nil {
			return resolvedLocation{}, s.locErr
		}
		return *s.loc, nil
	}
	loc, err := resolveLocation(s.ctx, s.cfg, s.cache)
	if err != nil {
		s.locErr = err
		return resolvedLocation{}, err
	}
	s.loc = &loc
	return loc, nil
}

func resolveLocation(ctx context.Context, cfg *config.Config, c *cache.Cache) (resolvedLocation, error) {
	switch {
	case cfg.Latitude != 0 || cfg.Longitude != 0:
		return resolvedLocation{
			Location: api.Location{Latitude: cfg.Latitude, Longitude: cfg.Longitude},
		}, nil
	case cfg.City != "":
		if cfg.Country == "" {
			return resolvedLocation{}, fmt.Errorf("--country is required when using --city")
		}
		return resolvedLocation{
			Location: api.Location{City: cfg.City, Country: cfg.Country},
			Label:    cfg.City + ", " + cfg.Country,
		}, nil
	}

	log := zerolog.Ctx(ctx)
	if c != nil {
		if cached := c.LoadGeo(); cached != nil {
			log.Debug().Str("city", cached.City).Msg("using cached geolocation")
			return fromGeo(cached), nil
		}
	}

	detected, err := geo.DetectLocation(ctx)
	if err != nil {
		return resolvedLocation{}, fmt.Errorf("no location specified and auto-detection failed: %w", err)
	}
	log.Debug().Str("city", detected.City).Str("tz", detected.Timezone).Msg("detected location")
	if c != nil {
		if err := c.SaveGeo(detected); err != nil {
			log.Debug().Err(err).Msg("could not cache geolocation")
		}
	}
	return fromGeo(detected), nil
}

func fromGeo(g *geo.Location) resolvedLocation {
	return resolvedLocation{Location: g.API(), Timezone: g.Timezone, Label: g.Label()}
}

// timezone picks the zone for "now": override > geo hint > API.
func (s *session) timezone(meta api.Meta) string {
	if s.cfg.Timezone != "" {
		return s.cfg.Timezone
	}
	if s.loc != nil && s.loc.Timezone != "" {
		return s.loc.Timezone
	}
	return prayer.Timezone("", meta)
}

// timings returns prayer timings for the given day, using the cache when
// available.
func (s *session) timings(date time.Time) (*fetchResult, error) {
	loc, err := s.location()
	if err != nil {
		return nil, err
	}
	key := date.Format(dates.KeyLayout)

	if s.cache != nil {
		if entry := s.cache.LoadTimings(key, loc.Location, s.method, s.school); entry != nil {
			s.log().Debug().Str("date", key).Msg("timings cache hit")
			return &fetchResult{Timings: entry.Timings, Meta: entry.Meta, DateInfo: entry.DateInfo}, nil
		}
	}

	resp, err := s.client.FetchTimings(date, loc.Location, s.method, s.school)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SaveTimings(key, loc.Location, s.method, s.school, resp); err != nil {
			s.log().Debug().Err(err).Msg("could not cache timings")
		}
	}
	return &fetchResult{Timings: resp.Data.Timings, Meta: resp.Data.Meta, DateInfo: resp.Data.Date}, nil
}

// today fetches today's timings and reports the timezone and "now" in it.
// The day is taken in the override or local zone first, then "now" is
// re-anchored to the resolved zone.
func (s *session) today() (*fetchResult, *time.Location, time.Time, error) {
	now := clock.NowIn(s.cfg.Timezone)
	result, err := s.timings(now)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	tz := s.timezone(result.Meta)
	tzLoc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, nil, time.Time{}, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	local := now.In(tzLoc)
	if local.Format(dates.KeyLayout) != now.Format(dates.KeyLayout) {
		// The resolved zone is on another calendar day.
		if result, err = s.timings(local); err != nil {
			return nil, nil, time.Time{}, err
		}
	}
	return result, tzLoc, local, nil
}

// todayKey is today's date key in the same zone status and today use.
// Without an override that zone comes from the location or the API; when
// neither is reachable the local day is used.
func (s *session) todayKey() string {
	if s.cfg.Timezone != "" {
		return clock.TodayIn(s.cfg.Timezone)
	}
	_, _, now, err := s.today()
	if err != nil {
		s.log().Debug().Err(err).Msg("timezone unresolved, using the local day")
		return clock.TodayIn("")
	}
	return now.Format(dates.KeyLayout)
}

// ishaLookup feeds the win-rate cutoff from today's timings.
func (s *session) ishaLookup(ctx context.Context, today string) (string, string, error) {
	t, err := dates.ParseKey(today)
	if err != nil {
		return "", "", err
	}
	result, err := s.timings(t)
	if err != nil {
		return "", "", err
	}
	return result.Timings.Isha, s.timezone(result.Meta), nil
}

// openStore opens the attendance database at the configured data dir.
func (s *session) openStore() (*store.Store, error) {
	return openStore(s.ctx, s.cfg)
}

func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	dir := cfg.DataDir
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	return store.Open(ctx, dir)
}

// buildLocationStr prefers the known place name and falls back to the
// coordinates the API echoed back.
func buildLocationStr(loc resolvedLocation, meta api.Meta) string {
	if loc.Label != "" {
		return loc.Label
	}
	return fmt.Sprintf("%.4f, %.4f", meta.Latitude, meta.Longitude)
}
