package bootstrap

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewDbPool_InvalidURL(t *testing.T) {
	// when
	pool, err := NewDbPool(context.Background(), "://not-a-url", time.Second)

	// then
	require.Error(t, err)
	assert.Nil(t, pool)
	assert.Contains(t, err.Error(), "failed to create database connection pool")
}

func Test_NewLogger_Level(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		enabled   slog.Level
		disabled  slog.Level
		checkDown bool
	}{
		{name: "debug", level: "debug", enabled: slog.LevelDebug},
		{name: "warn", level: "warn", enabled: slog.LevelWarn, disabled: slog.LevelInfo, checkDown: true},
		{name: "unknown falls back to info", level: "verbose", enabled: slog.LevelInfo, disabled: slog.LevelDebug, checkDown: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			l := NewLogger(tc.level)

			// then
			require.NotNil(t, l)
			assert.True(t, l.Enabled(context.Background(), tc.enabled))
			if tc.checkDown {
				assert.False(t, l.Enabled(context.Background(), tc.disabled))
			}
		})
	}
}
