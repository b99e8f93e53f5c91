package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/peerdir/internal/flagx"
	"github.com/dmitrijs2005/peerdir/internal/timex"
)

type JsonConfig struct {
	ServerHost     string         `json:"server_host"`
	ServerPort     int            `json:"server_port"`
	TimeServiceURL string         `json:"time_service_url"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

func parseJson(cfg *Config) error {
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

	if c.ServerHost != "" {
		cfg.ServerHost = c.ServerHost
	}
	if c.ServerPort != 0 {
		cfg.ServerPort = c.ServerPort
	}
	if c.TimeServiceURL != "" {
		cfg.TimeServiceURL = c.TimeServiceURL
	}
	if c.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = c.RequestTimeout.Duration
	}
	return nil
}
