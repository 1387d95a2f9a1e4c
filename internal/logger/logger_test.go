package logger

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type rejection struct{}

func (rejection) Error() string  { return "coupon expired" }
func (rejection) Expected() bool { return true }

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestExitMethodWithError(t *testing.T) {
	t.Run("expected rejections stay at debug", func(t *testing.T) {
		var buf bytes.Buffer
		InitializeWithWriter(&buf, "info", "text")

		ExitMethodWithError("BookingService.Create", fmt.Errorf("wrap: %w", rejection{}))
		assert.Empty(t, buf.String())
	})

	t.Run("failures are logged as errors", func(t *testing.T) {
		var buf bytes.Buffer
		InitializeWithWriter(&buf, "info", "json")

		ExitMethodWithError("BookingService.Create", errors.New("connection reset"))
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
		assert.Contains(t, buf.String(), "connection reset")
	})
}
