package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/rebang/rebang/pkg/paths"
)

func TestSetupLoggerVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		wantLevel zerolog.Level
	}{
		{"default is warn", 0, zerolog.WarnLevel},
		{"v is info", 1, zerolog.InfoLevel},
		{"vv is debug", 2, zerolog.DebugLevel},
		{"vvv is trace", 3, zerolog.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(paths.EnvStateDir, t.TempDir())
			SetupLogger(tt.verbosity, true)
			assert.Equal(t, tt.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestLogFileHonorsStateDirOverride(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv(paths.EnvStateDir, stateDir)

	SetupLogger(1, true)

	_, err := os.Stat(filepath.Join(stateDir, paths.LogFileName))
	assert.NoError(t, err)
}

func TestLogFileDisabled(t *testing.T) {
	stateDir := t.TempDir()
	t.Setenv(paths.EnvStateDir, stateDir)

	SetupLogger(1, false)

	_, err := os.Stat(filepath.Join(stateDir, paths.LogFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger("patcher")
	// The component field is baked into the logger context; just make sure a
	// log call does not panic and the logger is usable.
	logger.Debug().Msg("test message")
}
