package ramadan

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smokyabdulrahman/prayer-tracker/internal/api"
	"github.com/smokyabdulrahman/prayer-tracker/internal/validate"
)

// fakeCalendar serves a fixed calendar and records the request.
type fakeCalendar struct {
	resp  *api.CalendarResponse
	err   error
	year  int
	month int
	loc   api.Location
}

func (f *fakeCalendar) FetchHijriCalendar(year, month int, loc api.Location, method, school int) (*api.CalendarResponse, error) {
	f.year, f.month, f.loc = year, month, loc
	return f.resp, f.err
}

// fakeConverter labels every date as Ramadan day = day of month. Earlier
// dates sleep longer so completions arrive out of order.
type fakeConverter struct {
	failOn   string
	month    int
	inFlight atomic.Int32
	peak     atomic.Int32
	mu       sync.Mutex
	calls    int
}

func (f *fakeConverter) FetchHijriForDate(date time.Time) (*api.ConvertResponse, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	time.Sleep(time.Duration(31-date.Day()) * time.Millisecond)

	if date.Format("2006-01-02") == f.failOn {
		return nil, errors.New("conversion failed")
	}
	month := f.month
	if month == 0 {
		month = api.RamadanMonth
	}
	return &api.ConvertResponse{
		Code: 200,
		Data: api.ConvertData{Hijri: api.HijriDate{
			Day:   strconv.Itoa(date.Day()),
			Month: api.HijriMonth{Number: month, En: "Ramaḍān"},
			Year:  "1447",
		}},
	}, nil
}

func calendarDay(gregorian, hijriDay string) api.Data {
	return api.Data{Date: api.DateInfo{
		Gregorian: api.GregorianDate{Date: gregorian},
		Hijri:     api.HijriDate{Day: hijriDay, Month: api.HijriMonth{Number: 9, En: "Ramaḍān"}, Year: "1447"},
	}}
}

// ---------------------------------------------------------------------------
// FromStart
// ---------------------------------------------------------------------------

func TestFromStart_ThirtyDays(t *testing.T) {
	r := &Resolver{}

	out, err := r.FromStart(context.Background(), "2026-02-19", 30, false)

	require.NoError(t, err)
	require.Len(t, out, 30)
	assert.Equal(t, "2026-02-19", out[0].Key)
	assert.Equal(t, "2026-03-20", out[29].Key)
	assert.Equal(t, "", out[0].Label())
}

func TestFromStart_Validation(t *testing.T) {
	r := &Resolver{}
	ctx := context.Background()

	tests := []struct {
		name  string
		start string
		days  int
	}{
		{"zero days", "2026-02-19", 0},
		{"too many days", "2026-02-19", 31},
		{"nonexistent date", "2026-02-30", 29},
		{"bad shape", "2026-2-19", 29},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.FromStart(ctx, tt.start, tt.days, false)
			require.Error(t, err)
			assert.True(t, validate.IsValidation(err))
		})
	}
}

func TestFromStart_LabelsKeepDateOrder(t *testing.T) {
	conv := &fakeConverter{}
	r := &Resolver{Converter: conv, Workers: 4}

	out, err := r.FromStart(context.Background(), "2026-03-01", 10, true)

	require.NoError(t, err)
	require.Len(t, out, 10)
	for i, d := range out {
		assert.Equal(t, fmt.Sprintf("2026-03-%02d", i+1), d.Key)
		assert.Equal(t, strconv.Itoa(i+1), d.Hijri.Day)
	}
	assert.Equal(t, "1 Ramaḍān 1447 AH", out[0].Label())
	assert.Equal(t, 10, conv.calls)
	assert.LessOrEqual(t, conv.peak.Load(), int32(4))
}

func TestFromStart_LabelFailureFailsWhole(t *testing.T) {
	r := &Resolver{Converter: &fakeConverter{failOn: "2026-03-04"}}

	out, err := r.FromStart(context.Background(), "2026-03-01", 7, true)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2026-03-04")
	assert.Nil(t, out)
}

func TestFromStart_LabelsNeedConverter(t *testing.T) {
	_, err := (&Resolver{}).FromStart(context.Background(), "2026-03-01", 3, true)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// FromCalendar
// ---------------------------------------------------------------------------

func TestFromCalendar(t *testing.T) {
	cal := &fakeCalendar{resp: &api.CalendarResponse{Code: 200, Data: []api.Data{
		calendarDay("20-02-2026", "2"),
		calendarDay("18-02-2026", "1"),
		calendarDay("21-02-2026", "3"),
	}}}
	r := &Resolver{Calendar: cal}
	loc := api.Location{City: "Jakarta", Country: "Indonesia"}

	out, err := r.FromCalendar(context.Background(), loc, 1447, 20, 0)

	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-18", "2026-02-20", "2026-02-21"}, Keys(out))
	assert.Equal(t, "1", out[0].Hijri.Day)
	assert.Equal(t, 1447, cal.year)
	assert.Equal(t, api.RamadanMonth, cal.month)
	assert.Equal(t, loc, cal.loc)
}

func TestFromCalendar_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := (&Resolver{Calendar: &fakeCalendar{}}).FromCalendar(ctx, api.Location{}, 0, 0, 0)
	assert.True(t, validate.IsValidation(err))

	_, err = (&Resolver{Calendar: &fakeCalendar{err: errors.New("503")}}).FromCalendar(ctx, api.Location{}, 1447, 0, 0)
	assert.ErrorContains(t, err, "503")

	_, err = (&Resolver{Calendar: &fakeCalendar{resp: &api.CalendarResponse{}}}).FromCalendar(ctx, api.Location{}, 1447, 0, 0)
	assert.ErrorContains(t, err, "empty")

	bad := &api.CalendarResponse{Data: []api.Data{calendarDay("2026-02-18", "1")}}
	_, err = (&Resolver{Calendar: &fakeCalendar{resp: bad}}).FromCalendar(ctx, api.Location{}, 1447, 0, 0)
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// IsRamadan
// ---------------------------------------------------------------------------

func TestIsRamadan(t *testing.T) {
	ctx := context.Background()

	assert.True(t, (&Resolver{Converter: &fakeConverter{}}).IsRamadan(ctx, "2026-03-01"))
	assert.False(t, (&Resolver{Converter: &fakeConverter{month: 10}}).IsRamadan(ctx, "2026-03-25"))
}

func TestIsRamadan_FailuresMeanNo(t *testing.T) {
	ctx := context.Background()

	assert.False(t, (&Resolver{}).IsRamadan(ctx, "2026-03-01"))
	assert.False(t, (&Resolver{Converter: &fakeConverter{failOn: "2026-03-01"}}).IsRamadan(ctx, "2026-03-01"))
	assert.False(t, (&Resolver{Converter: &fakeConverter{}}).IsRamadan(ctx, "not-a-date"))
}
