package config

import (
	"errors"
	"net"
	"strconv"
	"time"
)

// Config holds runtime settings for the peer client.
type Config struct {
	ServerHost     string
	ServerPort     int
	TimeServiceURL string
	RequestTimeout time.Duration
}

func (c *Config) LoadDefaults() {
	c.ServerHost = "127.0.0.1"
	c.ServerPort = 0
	c.TimeServiceURL = ""
	c.RequestTimeout = 5 * time.Second
}

// ServerAddr is the coordinator address in host:port form.
func (c *Config) ServerAddr() string {
	return net.JoinHostPort(c.ServerHost, strconv.Itoa(c.ServerPort))
}

func (c *Config) Validate() error {
	if c.ServerHost == "" || c.ServerPort == 0 {
		return errors.New("server host (-s) and port (-p) are required")
	}
	if c.ServerPort < 0 || c.ServerPort > 65535 {
		return errors.New("server port out of range")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present).
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
