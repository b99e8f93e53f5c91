package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1", c.ServerHost)
	assert.Equal(t, 5*time.Second, c.RequestTimeout)
	assert.Error(t, c.Validate(), "port has no default")
}

func TestLoadConfig_Flags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"client", "-s", "coordinator.local", "-p", "5000", "-w", "http://127.0.0.1:8000/datetime"}

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "coordinator.local:5000", c.ServerAddr())
	assert.Equal(t, "http://127.0.0.1:8000/datetime", c.TimeServiceURL)
}

func TestLoadConfig_JsonThenFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "client.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_host":"10.0.0.1","server_port":5000,"request_timeout":"2s"}`), 0o600))

	os.Args = []string{"client", "-c", path, "-p", "6000"}

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1", c.ServerHost)
	assert.Equal(t, 6000, c.ServerPort)
	assert.Equal(t, 2*time.Second, c.RequestTimeout)
}

func TestLoadConfig_Errors(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	os.Args = []string{"client", "-s", "h"}
	_, err := LoadConfig()
	assert.Error(t, err)

	os.Args = []string{"client", "-p", "x"}
	_, err = LoadConfig()
	assert.Error(t, err)

	os.Args = []string{"client", "-p", "70000"}
	_, err = LoadConfig()
	assert.Error(t, err)
}
