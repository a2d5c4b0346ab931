// Package ramadan resolves the Gregorian days that make up a Ramadan, either
// from the API's Hijri calendar or from a known start date and length.
package ramadan

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
	"github.com/smokyabdulrahman/prayer-tracker/internal/validate"
)

// DefaultLabelWorkers bounds the concurrent date conversions when labelling
// a start-derived range.
const DefaultLabelWorkers = 6

// CalendarSource fetches a Hijri month's calendar for a location.
type CalendarSource interface {
	FetchHijriCalendar(year, month int, loc api.Location, method, school int) (*api.CalendarResponse, error)
}

// HijriConverter converts one Gregorian date to its Hijri equivalent.
type HijriConverter interface {
	FetchHijriForDate(date time.Time) (*api.ConvertResponse, error)
}

// Date pairs a date key with its Hijri label. Hijri is zero when the range
// was built without labels.
type Date struct {
	Key   string        `json:"date"`
	Hijri api.HijriDate `json:"hijri"`
}

// Label renders the Hijri side, e.g. "3 Ramaḍān 1447 AH", or "" if unknown.
func (d Date) Label() string {
	if d.Hijri.Day == "" {
		return ""
	}
	return d.Hijri.Format()
}

// Keys returns the date keys of ds in order.
func Keys(ds []Date) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Key
	}
	return out
}

// Resolver produces Ramadan date ranges. Either source may be nil if the
// caller never uses the strategy that needs it.
type Resolver struct {
	Calendar  CalendarSource
	Converter HijriConverter
	// Workers caps concurrent conversions; DefaultLabelWorkers when zero.
	Workers int
}

// FromCalendar asks the API for Hijri month 9 of year at loc and returns its
// days in date order.
func (r *Resolver) FromCalendar(ctx context.Context, loc api.Location, year, method, school int) ([]Date, error) {
	if year <= 0 {
		return nil, &validate.Error{Field: "hijri year", Value: strconv.Itoa(year), Reason: "must be a positive integer"}
	}
	if r.Calendar == nil {
		return nil, fmt.Errorf("no calendar source configured")
	}

	resp, err := r.Calendar.FetchHijriCalendar(year, api.RamadanMonth, loc, method, school)
	if err != nil {
		return nil, fmt.Errorf("fetching Ramadan %d calendar: %w", year, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("calendar for Ramadan %d is empty", year)
	}

	out := make([]Date, 0, len(resp.Data))
	for _, d := range resp.Data {
		key, err := dates.ParseAPIDate(d.Date.Gregorian.Date)
		if err != nil {
			return nil, fmt.Errorf("calendar for Ramadan %d: %w", year, err)
		}
		out = append(out, Date{Key: key, Hijri: d.Date.Hijri})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	zerolog.Ctx(ctx).Debug().Int("year", year).Int("days", len(out)).
		Str("first", out[0].Key).Msg("resolved Ramadan from calendar")
	return out, nil
}

// FromStart builds days consecutive dates beginning at start. With labels,
// each date is converted to Hijri concurrently; the result stays in date
// order and any failed conversion fails the whole call.
func (r *Resolver) FromStart(ctx context.Context, start string, days int, labels bool) ([]Date, error) {
	if err := validate.DateKey(start); err != nil {
		return nil, err
	}
	if err := validate.Days(days); err != nil {
		return nil, err
	}

	out := make([]Date, days)
	for i := range out {
		key, err := dates.AddDays(start, i)
		if err != nil {
			return nil, err
		}
		out[i].Key = key
	}
	if !labels {
		return out, nil
	}
	if r.Converter == nil {
		return nil, fmt.Errorf("no date converter configured")
	}

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultLabelWorkers
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range out {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, _ := dates.ParseKey(out[i].Key)
			resp, err := r.Converter.FetchHijriForDate(t)
			if err != nil {
				return fmt.Errorf("converting %s: %w", out[i].Key, err)
			}
			// Each goroutine writes only its own index.
			out[i].Hijri = resp.Data.Hijri
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// IsRamadan reports whether key falls in Ramadan. Any failure to convert the
// date is treated as not Ramadan.
func (r *Resolver) IsRamadan(ctx context.Context, key string) bool {
	log := zerolog.Ctx(ctx)
	if r.Converter == nil {
		return false
	}
	t, err := dates.ParseKey(key)
	if err != nil {
		log.Debug().Err(err).Msg("not Ramadan: bad date")
		return false
	}
	resp, err := r.Converter.FetchHijriForDate(t)
	if err != nil {
		log.Warn().Err(err).Str("date", key).Msg("hijri lookup failed, assuming not Ramadan")
		return false
	}
	return resp.Data.Hijri.IsRamadan()
}
