package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/peerdir/internal/flagx"
	"github.com/dmitrijs2005/peerdir/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept both "5s"
// strings and integer nanoseconds. Absent fields keep their current value.
type JsonConfig struct {
	Host            *string         `json:"host"`
	Port            *int            `json:"port"`
	AuditAddr       *string         `json:"audit_addr"`
	AuditSecret     *string         `json:"audit_secret"`
	AuditTimeout    *timex.Duration `json:"audit_timeout"`
	MaxWorkers      *int64          `json:"max_workers"`
	ReadTimeout     *timex.Duration `json:"read_timeout"`
	WriteTimeout    *timex.Duration `json:"write_timeout"`
	MaxUsers        *int            `json:"max_users"`
	MaxFilesPerUser *int            `json:"max_files_per_user"`
	MaxReplyBytes   *int            `json:"max_reply_bytes"`
	LogLevel        *string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config, if any.
func parseJson(config *Config) error {
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	set(&config.Host, c.Host)
	set(&config.Port, c.Port)
	set(&config.AuditAddr, c.AuditAddr)
	set(&config.AuditSecret, c.AuditSecret)
	set(&config.MaxWorkers, c.MaxWorkers)
	set(&config.MaxUsers, c.MaxUsers)
	set(&config.MaxFilesPerUser, c.MaxFilesPerUser)
	set(&config.MaxReplyBytes, c.MaxReplyBytes)
	set(&config.LogLevel, c.LogLevel)

	if c.AuditTimeout != nil {
		config.AuditTimeout = c.AuditTimeout.Duration
	}
	if c.ReadTimeout != nil {
		config.ReadTimeout = c.ReadTimeout.Duration
	}
	if c.WriteTimeout != nil {
		config.WriteTimeout = c.WriteTimeout.Duration
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
