package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestOptions_Level(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, Options{}.Level())
	assert.Equal(t, zerolog.DebugLevel, Options{Verbose: true}.Level())
	assert.Equal(t, zerolog.Disabled, Options{Quiet: true}.Level())
	assert.Equal(t, zerolog.Disabled, Options{Quiet: true, Verbose: true}.Level())
}

func TestNew_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{NoColor: true})

	log.Debug().Msg("hidden")
	log.Warn().Msg("cache disabled")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "cache disabled")
	assert.Contains(t, out, "run=")
}

func TestNew_Quiet(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Quiet: true})

	log.Error().Msg("boom")

	assert.Empty(t, buf.String())
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), New(&buf, Options{Verbose: true, NoColor: true}))

	From(ctx).Debug().Str("date", "2026-02-20").Msg("resolved")

	assert.Contains(t, buf.String(), "date=2026-02-20")
}

func TestFrom_NoLogger(t *testing.T) {
	// Must not panic without an attached logger.
	From(context.Background()).Warn().Msg("dropped")
}
