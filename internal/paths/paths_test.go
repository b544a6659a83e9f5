package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigDirPrecedence(t *testing.T) {
	t.Setenv(EnvConfigDir, "/env/config")

	dir, err := ResolveConfigDir("/flag/config")
	require.NoError(t, err)
	assert.Equal(t, "/flag/config", dir)

	dir, err = ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, "/env/config", dir)
}

func TestResolveConfigDirDefault(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is linux-only")
	}
	t.Setenv(EnvConfigDir, "")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	dir, err := ResolveConfigDir("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "groomcrm"), dir)
}

func TestResolveDataDirPrecedence(t *testing.T) {
	t.Setenv(EnvDataDir, "/env/data")

	assert.Equal(t, "/flag/data", ResolveDataDir("/flag/data", "/cfg/data"))
	assert.Equal(t, "/cfg/data", ResolveDataDir("", "/cfg/data"))
	assert.Equal(t, "/env/data", ResolveDataDir("", ""))

	t.Setenv(EnvDataDir, "")
	assert.Equal(t, DefaultDataDirName, ResolveDataDir("", ""))
}
