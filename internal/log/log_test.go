package log_test

import (
	"bytes"
	"strings"
	"testing"

	"bennypowers.dev/lessc/internal/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	original := log.GetLevel()
	defer func() {
		log.SetOutput(nil)
		log.SetLevel(original)
	}()

	t.Run("Info level logs Info, Warn, Error but not Debug", func(t *testing.T) {
		buf.Reset()
		log.SetLevel(log.LevelInfo)

		log.Debug("debug message")
		log.Info("info message")
		log.Warn("warn message")
		log.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.Contains(t, output, "info message")
		assert.Contains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("Error level only logs Error", func(t *testing.T) {
		buf.Reset()
		log.SetLevel(log.LevelError)

		log.Debug("debug message")
		log.Info("info message")
		log.Warn("warn message")
		log.Error("error message")

		output := buf.String()
		assert.NotContains(t, output, "debug message")
		assert.NotContains(t, output, "info message")
		assert.NotContains(t, output, "warn message")
		assert.Contains(t, output, "error message")
	})

	t.Run("Enabled follows the level", func(t *testing.T) {
		log.SetLevel(log.LevelWarn)
		assert.False(t, log.Enabled(log.LevelDebug))
		assert.True(t, log.Enabled(log.LevelError))
	})
}

func TestLogFormat(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	original := log.GetLevel()
	log.SetLevel(log.LevelDebug)
	defer func() {
		log.SetOutput(nil)
		log.SetLevel(original)
	}()

	t.Run("Messages include prefix and level label", func(t *testing.T) {
		buf.Reset()
		log.Warn("imported %s twice", "a.less")

		assert.Equal(t, "[LESSC] WARN: imported a.less twice\n", buf.String())
	})

	t.Run("Each log message ends with newline", func(t *testing.T) {
		buf.Reset()
		log.Debug("message 1")
		log.Info("message 2")

		lines := strings.Split(buf.String(), "\n")
		require.Len(t, lines, 3)
		assert.Contains(t, lines[0], "DEBUG: message 1")
		assert.Contains(t, lines[1], "INFO: message 2")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    log.Level
		wantErr bool
	}{
		{"debug", log.LevelDebug, false},
		{"INFO", log.LevelInfo, false},
		{"", log.LevelInfo, false},
		{"warning", log.LevelWarn, false},
		{"error", log.LevelError, false},
		{"loud", log.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := log.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
