package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetDefault() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestSetVerbose(t *testing.T) {
	defer resetDefault()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer resetDefault()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer resetDefault()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")

	assert.Empty(t, buf.String())
}

func TestWarn_AlwaysWrittenByDefault(t *testing.T) {
	defer resetDefault()

	var buf bytes.Buffer
	SetOutput(&buf)

	Warn("attachment %q skipped", "a.pdf")
	Error("failed")

	assert.Equal(t, "[WARNING] attachment \"a.pdf\" skipped\n[ERROR] failed\n", buf.String())
}

func TestSection(t *testing.T) {
	defer resetDefault()

	var buf bytes.Buffer
	SetOutput(&buf)

	Section("Hidden")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Section("Extraction")
	assert.Equal(t, "\n=== Extraction ===\n", buf.String())
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "[DEBUG] d\n[INFO] i\n[WARNING] w\n[ERROR] e\n"},
		{LevelInfo, "[INFO] i\n[WARNING] w\n[ERROR] e\n"},
		{LevelWarning, "[WARNING] w\n[ERROR] e\n"},
		{LevelError, "[ERROR] e\n"},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			log := New(&buf, tt.level)

			log.Debug("d")
			log.Info("i")
			log.Warn("w")
			log.Error("e")

			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestLogger_NilWriterDiscards(t *testing.T) {
	log := New(nil, LevelDebug)
	assert.NotPanics(t, func() { log.Info("nothing") })
}

func TestDiscard(t *testing.T) {
	log := Discard()
	assert.False(t, log.Enabled(LevelWarning))
	assert.True(t, log.Enabled(LevelError))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warn", LevelWarning},
		{"Warning", LevelWarning},
		{" error ", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
