package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func colored(t *testing.T) {
	t.Helper()
	prev := Enabled()
	SetEnabled(true)
	t.Cleanup(func() { SetEnabled(prev) })
}

func TestStyles(t *testing.T) {
	colored(t)

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"bold", Bold, "\033[1mFajr\033[0m"},
		{"dim", Dim, "\033[2mFajr\033[0m"},
		{"red", Red, "\033[31mFajr\033[0m"},
		{"green", Green, "\033[32mFajr\033[0m"},
		{"yellow", Yellow, "\033[33mFajr\033[0m"},
		{"gray", Gray, "\033[90mFajr\033[0m"},
		{"accent", Accent, "\033[1m\033[36mFajr\033[0m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn("Fajr"))
		})
	}
}

func TestStyles_Disabled(t *testing.T) {
	plain(t)

	for _, fn := range []func(string) string{Bold, Dim, Red, Green, Yellow, Gray, Accent} {
		assert.Equal(t, "Isha", fn("Isha"))
	}
	assert.False(t, Enabled())
}

func TestPercent_Thresholds(t *testing.T) {
	colored(t)

	assert.Equal(t, Green("100%"), Percent(100))
	assert.Equal(t, Green("80%"), Percent(80))
	assert.Equal(t, Yellow("79%"), Percent(79))
	assert.Equal(t, Yellow("50%"), Percent(50))
	assert.Equal(t, Red("49%"), Percent(49))
}

func TestPercent_Plain(t *testing.T) {
	plain(t)

	assert.Equal(t, "67%", Percent(67))
}

func TestShouldEnable_NoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	assert.False(t, shouldEnable())
}
