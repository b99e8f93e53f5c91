package config

import "os"

// AuditHostEnv names the audit service host when no flag or file sets it.
const AuditHostEnv = "LOG_RPC_IP"

func parseEnv(config *Config) {
	if config.AuditAddr != "" {
		return
	}
	if v, ok := os.LookupEnv(AuditHostEnv); ok {
		config.AuditAddr = v
	}
}
