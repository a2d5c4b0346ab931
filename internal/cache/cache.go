package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/geo"
)

const (
	timingsCacheFile  = "timings_%s.json"  // keyed by hash
	calendarCacheFile = "calendar_%s.json" // keyed by hash
	hijriCacheFile    = "hijri_%s.json"    // keyed by hash
	geoCacheFile      = "geolocation.json"
	geoTTL            = 24 * time.Hour
)

// Cache provides file-based caching for prayer times, calendars and
// geolocation data.
type Cache struct {
	dir string
}

// TimingsEntry stores a day's prayer times along with metadata for validation.
type TimingsEntry struct {
	Date     string       `json:"date"` // YYYY-MM-DD
	Method   int          `json:"method"`
	School   int          `json:"school"`
	Timings  api.Timings  `json:"timings"`
	DateInfo api.DateInfo `json:"date_info"`
	Meta     api.Meta     `json:"meta"`
}

// CalendarEntry stores a month of days. For Hijri calendars Year and Month
// are Hijri values.
type CalendarEntry struct {
	Year   int        `json:"year"`
	Month  int        `json:"month"`
	Method int        `json:"method"`
	School int        `json:"school"`
	Days   []api.Data `json:"days"`
}

// GeoCacheEntry stores a cached geolocation result with a timestamp.
type GeoCacheEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}

// DefaultDir returns ~/.cache/prayer-tracker, honouring XDG_CACHE_HOME.
func DefaultDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, "prayer-tracker"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".cache", "prayer-tracker"), nil
}

// New creates a Cache rooted at the given directory, or at DefaultDir when
// dir is empty.
func New(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}

	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// cacheKey builds a deterministic hash from everything that affects the
// cached payload, so different locations/methods/schools get separate files.
func cacheKey(kind, period string, loc api.Location, method, school int) string {
	raw := fmt.Sprintf("%s|%s|%.6f|%.6f|%s|%s|%d|%d",
		kind, period, loc.Latitude, loc.Longitude, loc.City, loc.Country, method, school)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8]) // 16 hex chars is plenty for uniqueness
}

func (c *Cache) path(pattern, key string) string {
	return filepath.Join(c.dir, fmt.Sprintf(pattern, key))
}

// readJSON decodes path into v. Any failure is a miss.
func readJSON(path string, v any) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	return nil
}

// LoadTimings reads cached prayer times for the day key. Returns nil if the
// cache is missing, corrupt or for another day.
func (c *Cache) LoadTimings(date string, loc api.Location, method, school int) *TimingsEntry {
	var entry TimingsEntry
	if !readJSON(c.path(timingsCacheFile, cacheKey("day", date, loc, method, school)), &entry) {
		return nil
	}
	// Stale cache for another day is useless.
	if entry.Date != date {
		return nil
	}
	return &entry
}

// SaveTimings writes a day's prayer times to the cache.
func (c *Cache) SaveTimings(date string, loc api.Location, method, school int, resp *api.Response) error {
	return writeJSON(c.path(timingsCacheFile, cacheKey("day", date, loc, method, school)), TimingsEntry{
		Date:     date,
		Method:   method,
		School:   school,
		Timings:  resp.Data.Timings,
		DateInfo: resp.Data.Date,
		Meta:     resp.Data.Meta,
	})
}

func period(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

func (c *Cache) loadMonth(pattern, kind string, year, month int, loc api.Location, method, school int) *CalendarEntry {
	var entry CalendarEntry
	if !readJSON(c.path(pattern, cacheKey(kind, period(year, month), loc, method, school)), &entry) {
		return nil
	}
	if entry.Year != year || entry.Month != month || len(entry.Days) == 0 {
		return nil
	}
	return &entry
}

func (c *Cache) saveMonth(pattern, kind string, year, month int, loc api.Location, method, school int, resp *api.CalendarResponse) error {
	return writeJSON(c.path(pattern, cacheKey(kind, period(year, month), loc, method, school)), CalendarEntry{
		Year:   year,
		Month:  month,
		Method: method,
		School: school,
		Days:   resp.Data,
	})
}

// LoadCalendar reads a cached Gregorian month.
func (c *Cache) LoadCalendar(year, month int, loc api.Location, method, school int) *CalendarEntry {
	return c.loadMonth(calendarCacheFile, "gregorian", year, month, loc, method, school)
}

// SaveCalendar writes a Gregorian month to the cache.
func (c *Cache) SaveCalendar(year, month int, loc api.Location, method, school int, resp *api.CalendarResponse) error {
	return c.saveMonth(calendarCacheFile, "gregorian", year, month, loc, method, school, resp)
}

// LoadHijriCalendar reads a cached Hijri month.
func (c *Cache) LoadHijriCalendar(year, month int, loc api.Location, method, school int) *CalendarEntry {
	return c.loadMonth(hijriCacheFile, "hijri", year, month, loc, method, school)
}

// SaveHijriCalendar writes a Hijri month to the cache.
func (c *Cache) SaveHijriCalendar(year, month int, loc api.Location, method, school int, resp *api.CalendarResponse) error {
	return c.saveMonth(hijriCacheFile, "hijri", year, month, loc, method, school, resp)
}

// LoadGeo attempts to read a cached geolocation result.
// Returns nil if the cache is missing or older than the TTL (24 hours).
func (c *Cache) LoadGeo() *geo.Location {
	var entry GeoCacheEntry
	if !readJSON(filepath.Join(c.dir, geoCacheFile), &entry) {
		return nil
	}
	if time.Since(entry.CachedAt) > geoTTL {
		return nil
	}
	return &entry.Location
}

// SaveGeo writes a geolocation result to the cache.
func (c *Cache) SaveGeo(loc *geo.Location) error {
	return writeJSON(filepath.Join(c.dir, geoCacheFile), GeoCacheEntry{
		Location: *loc,
		CachedAt: time.Now(),
	})
}
