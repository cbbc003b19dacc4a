package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTruthy(t *testing.T) {
	cases := map[string]bool{
		"1": true, "true": true, "TRUE": true, "yes": true, "ON": true,
		"0": false, "false": false, "no": false, "": false, "random": false,
	}
	for input, want := range cases {
		assert.Equal(t, want, isTruthy(input), "isTruthy(%q)", input)
	}
}

func TestDetermineLogLevel_FlagsTakePrecedenceOverEnv(t *testing.T) {
	t.Cleanup(func() { debugFlag, verboseFlag, quietFlag = false, false, false })

	t.Setenv("REAP_DEBUG", "")
	t.Setenv("REAP_VERBOSE", "")
	t.Setenv("REAP_QUIET", "")

	debugFlag = true
	assert.Equal(t, slog.LevelDebug, determineLogLevel())

	debugFlag = false
	verboseFlag = true
	assert.Equal(t, slog.LevelInfo, determineLogLevel())

	verboseFlag = false
	quietFlag = true
	assert.Equal(t, slog.LevelError, determineLogLevel())
}

func TestDetermineLogLevel_FallsBackToEnv(t *testing.T) {
	t.Cleanup(func() { debugFlag, verboseFlag, quietFlag = false, false, false })
	t.Setenv("REAP_VERBOSE", "true")
	assert.Equal(t, slog.LevelInfo, determineLogLevel())
}

func TestDetermineLogLevel_DefaultIsWarn(t *testing.T) {
	t.Cleanup(func() { debugFlag, verboseFlag, quietFlag = false, false, false })
	t.Setenv("REAP_DEBUG", "")
	t.Setenv("REAP_VERBOSE", "")
	t.Setenv("REAP_QUIET", "")
	assert.Equal(t, slog.LevelWarn, determineLogLevel())
}
