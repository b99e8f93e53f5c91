// Package config handles configuration for the coordinator, including
// defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/flagx"
)

// DefaultAuditPort is appended to an audit host given without a port.
const DefaultAuditPort = "50052"

// Config holds runtime settings for the coordinator.
//
// Fields:
//   - Host / Port: where the wire protocol listener binds. Port is required.
//   - AuditAddr: host:port of the audit service; empty disables auditing.
//   - AuditSecret: HMAC secret for service tokens sent to the audit service.
//   - AuditTimeout: upper bound for one audit call.
//   - MaxWorkers: connections served concurrently.
//   - ReadTimeout / WriteTimeout: per-connection I/O deadlines.
//   - MaxUsers / MaxFilesPerUser: registry capacity, zero means unlimited.
//   - MaxReplyBytes: largest LIST_USERS/LIST_CONTENT reply, zero means unlimited.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Host            string
	Port            int
	AuditAddr       string
	AuditSecret     string
	AuditTimeout    time.Duration
	MaxWorkers      int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	MaxUsers        int
	MaxFilesPerUser int
	MaxReplyBytes   int
	LogLevel        string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Host = ""
	c.Port = 0
	c.AuditAddr = ""
	c.AuditSecret = ""
	c.AuditTimeout = 5 * time.Second
	c.MaxWorkers = 256
	c.ReadTimeout = 10 * time.Second
	c.WriteTimeout = 10 * time.Second
	c.MaxUsers = 0
	c.MaxFilesPerUser = 0
	c.MaxReplyBytes = 0
	c.LogLevel = "info"
}

// Address is the listener address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Validate reports settings the coordinator cannot start with.
func (c *Config) Validate() error {
	if c.Port == 0 {
		return errors.New("port is required (-p)")
	}
	if err := flagx.ValidatePort(c.Port); err != nil {
		return err
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive, got %d", c.MaxWorkers)
	}
	if c.ReadTimeout <= 0 || c.WriteTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if c.MaxUsers < 0 || c.MaxFilesPerUser < 0 || c.MaxReplyBytes < 0 {
		return errors.New("capacity limits cannot be negative")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line
// flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	parseEnv(cfg)
	if err := parseFlags(cfg); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	cfg.AuditAddr = normalizeAuditAddr(cfg.AuditAddr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func normalizeAuditAddr(addr string) string {
	if addr == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, DefaultAuditPort)
}
