package attendance

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/smokyabdulrahman/prayer-tracker/internal/dates"
)

// IshaLookup reports today's Isha time as the API writes it and the
// timezone the API resolved for the user's location.
type IshaLookup func(ctx context.Context, today string) (isha string, tz string, err error)

// WinRateCutoff returns the last day that may count toward a win rate.
// Today counts once its Isha has started (now >= Isha); before that the
// in-progress day is left out and the cutoff is yesterday. Without a lookup,
// or when it fails, the cutoff is yesterday.
//
// override, when set, is the timezone used for "now" instead of the API's.
func WinRateCutoff(ctx context.Context, clock dates.Clock, override string, lookup IshaLookup) string {
	log := zerolog.Ctx(ctx)

	yesterday := func(tz string) string {
		key, _ := dates.AddDays(clock.TodayIn(tz), -1)
		return key
	}

	if lookup == nil {
		return yesterday(override)
	}

	isha, apiTZ, err := lookup(ctx, clock.TodayIn(override))
	if err != nil {
		log.Debug().Err(err).Msg("isha lookup failed, cutting off at yesterday")
		return yesterday(override)
	}

	tz := override
	if tz == "" {
		tz = apiTZ
	}
	ishaMinutes, ok := dates.ParseTimeToMinutes(isha)
	if !ok {
		log.Debug().Str("isha", isha).Msg("unparseable isha time, cutting off at yesterday")
		return yesterday(tz)
	}

	if clock.MinutesIn(tz) >= ishaMinutes {
		return clock.TodayIn(tz)
	}
	return yesterday(tz)
}
