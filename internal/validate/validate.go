// Package validate checks user-supplied dates, years and day counts before
// they reach the aggregation code. Failures are returned as *Error so the
// command layer can print them and exit non-zero.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// MaxRamadanDays is the longest a lunar month can run.
const MaxRamadanDays = 30

// Error describes a rejected input value.
type Error struct {
	Field  string
	Value  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// IsValidation reports whether err is (or wraps) a validation error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}

var (
	v    *validator.Validate
	once sync.Once

	keyShape = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

func instance() *validator.Validate {
	once.Do(func() {
		v = validator.New()
		v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
			return isRealDate(fl.Field().String())
		})
	})
	return v
}

// isRealDate accepts only YYYY-MM-DD strings naming a real calendar day.
// The parts are rebuilt through time.Date; a normalised day (e.g. Feb 30
// becoming Mar 2) means the input did not exist.
func isRealDate(s string) bool {
	if !keyShape.MatchString(s) {
		return false
	}
	y, _ := strconv.Atoi(s[0:4])
	m, _ := strconv.Atoi(s[5:7])
	d, _ := strconv.Atoi(s[8:10])
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	return t.Year() == y && int(t.Month()) == m && t.Day() == d
}

// DateKey validates a YYYY-MM-DD string.
func DateKey(s string) error {
	if err := instance().Var(s, "required,datekey"); err != nil {
		return &Error{Field: "date", Value: s, Reason: "must be a real date in YYYY-MM-DD form"}
	}
	return nil
}

// HijriYear parses and validates a positive Hijri year.
func HijriYear(s string) (int, error) {
	n, err := parseInt(s)
	if err != nil || instance().Var(n, "gt=0") != nil {
		return 0, &Error{Field: "hijri year", Value: s, Reason: "must be a positive integer"}
	}
	return n, nil
}

// DayCount parses and validates a Ramadan length in [1, 30].
func DayCount(s string) (int, error) {
	n, err := parseInt(s)
	if err != nil || instance().Var(n, fmt.Sprintf("min=1,max=%d", MaxRamadanDays)) != nil {
		return 0, &Error{Field: "day count", Value: s, Reason: fmt.Sprintf("must be an integer between 1 and %d", MaxRamadanDays)}
	}
	return n, nil
}

// Days validates an integer already parsed by a flag.
func Days(n int) error {
	if instance().Var(n, fmt.Sprintf("min=1,max=%d", MaxRamadanDays)) != nil {
		return &Error{Field: "day count", Value: strconv.Itoa(n), Reason: fmt.Sprintf("must be an integer between 1 and %d", MaxRamadanDays)}
	}
	return nil
}

// Positive rejects counts below one, e.g. a recap window.
func Positive(field string, n int) error {
	if instance().Var(n, "min=1") != nil {
		return &Error{Field: field, Value: strconv.Itoa(n), Reason: "must be a positive integer"}
	}
	return nil
}

// Month parses and validates a month number in [1, 12].
func Month(s string) (int, error) {
	n, err := parseInt(s)
	if err != nil || instance().Var(n, "min=1,max=12") != nil {
		return 0, &Error{Field: "month", Value: s, Reason: "must be an integer between 1 and 12"}
	}
	return n, nil
}

// Range validates that from and to are date keys with from <= to.
func Range(from, to string) error {
	if err := DateKey(from); err != nil {
		return err
	}
	if err := DateKey(to); err != nil {
		return err
	}
	if from > to {
		return &Error{Field: "range", Value: from + ".." + to, Reason: "start must not be after end"}
	}
	return nil
}

// parseInt is strict: no signs, spaces or fractional parts.
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, "+.eE") {
		return 0, fmt.Errorf("not an integer")
	}
	return strconv.Atoi(s)
}
