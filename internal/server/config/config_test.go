package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/flagx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "", c.Host)
	assert.Equal(t, 0, c.Port)
	assert.Equal(t, "", c.AuditAddr)
	assert.Equal(t, 5*time.Second, c.AuditTimeout)
	assert.Equal(t, int64(256), c.MaxWorkers)
	assert.Equal(t, 10*time.Second, c.ReadTimeout)
	assert.Equal(t, 10*time.Second, c.WriteTimeout)
	assert.Equal(t, "info", c.LogLevel)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var c Config
		c.LoadDefaults()
		c.Port = 5000
		return c
	}

	c := valid()
	require.NoError(t, c.Validate())

	c = valid()
	c.Port = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Port = 80
	assert.ErrorIs(t, c.Validate(), flagx.ErrPortOutOfRange)

	c = valid()
	c.Port = 70000
	assert.ErrorIs(t, c.Validate(), flagx.ErrPortOutOfRange)

	c = valid()
	c.MaxWorkers = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.ReadTimeout = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.MaxUsers = -1
	assert.Error(t, c.Validate())
}

func TestAddress(t *testing.T) {
	c := Config{Port: 5000}
	assert.Equal(t, ":5000", c.Address())

	c.Host = "127.0.0.1"
	assert.Equal(t, "127.0.0.1:5000", c.Address())
}

func TestLoadConfig(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("port is required", func(t *testing.T) {
		t.Setenv(AuditHostEnv, "")
		os.Args = []string{"testbin"}
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("privileged port refused", func(t *testing.T) {
		os.Args = []string{"testbin", "-p", "80"}
		_, err := LoadConfig()
		assert.ErrorIs(t, err, flagx.ErrPortOutOfRange)
	})

	t.Run("audit host from environment", func(t *testing.T) {
		t.Setenv(AuditHostEnv, "10.0.0.9")
		os.Args = []string{"testbin", "-p", "5000"}

		c, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, 5000, c.Port)
		assert.Equal(t, "10.0.0.9:"+DefaultAuditPort, c.AuditAddr)
	})

	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv(AuditHostEnv, "10.0.0.9")
		os.Args = []string{"testbin", "-p", "5000", "-l", "audit.local:7000"}

		c, err := LoadConfig()
		require.NoError(t, err)
		assert.Equal(t, "audit.local:7000", c.AuditAddr)
	})

	t.Run("sub-second json read timeout survives flags", func(t *testing.T) {
		t.Setenv(AuditHostEnv, "")
		for _, tc := range []struct {
			raw  string
			want time.Duration
		}{
			{"1500ms", 1500 * time.Millisecond},
			{"500ms", 500 * time.Millisecond},
		} {
			path := filepath.Join(t.TempDir(), "c.json")
			body := `{"port":5000,"read_timeout":"` + tc.raw + `","max_reply_bytes":256}`
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			os.Args = []string{"testbin", "-c", path}

			c, err := LoadConfig()
			require.NoError(t, err, tc.raw)
			assert.Equal(t, tc.want, c.ReadTimeout, tc.raw)
			assert.Equal(t, 256, c.MaxReplyBytes)
		}
	})

	t.Run("negative reply limit refused", func(t *testing.T) {
		t.Setenv(AuditHostEnv, "")
		os.Args = []string{"testbin", "-p", "5000", "-r=-1"}
		_, err := LoadConfig()
		assert.Error(t, err)
	})

	t.Run("bad flag value", func(t *testing.T) {
		os.Args = []string{"testbin", "-p", "five"}
		_, err := LoadConfig()
		assert.Error(t, err)
	})
}

func TestNormalizeAuditAddr(t *testing.T) {
	assert.Equal(t, "", normalizeAuditAddr(""))
	assert.Equal(t, "host:1", normalizeAuditAddr("host:1"))
	assert.Equal(t, "host:"+DefaultAuditPort, normalizeAuditAddr("host"))
	assert.Equal(t, "[::1]:"+DefaultAuditPort, normalizeAuditAddr("::1"))
}
