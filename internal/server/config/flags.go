package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/peerdir/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   bind host (empty = all interfaces)
//	-p int      listening port, 1024-65535
//	-l string   audit service address, host or host:port
//	-s string   audit service token secret
//	-w int      max concurrent connections
//	-t int      read timeout, seconds
//	-m int      max registered users (0 = unlimited)
//	-f int      max published files per user (0 = unlimited)
//	-r int      max list reply size in bytes (0 = unlimited)
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-l", "-s", "-w", "-t", "-m", "-f", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Host, "a", config.Host, "host to bind")
	fs.IntVar(&config.Port, "p", config.Port, "port to listen on")
	fs.StringVar(&config.AuditAddr, "l", config.AuditAddr, "audit service address")
	fs.StringVar(&config.AuditSecret, "s", config.AuditSecret, "audit service secret key")
	fs.Int64Var(&config.MaxWorkers, "w", config.MaxWorkers, "max concurrent connections")

	readTimeout := fs.Int("t", int(config.ReadTimeout.Seconds()), "read timeout (in seconds)")

	fs.IntVar(&config.MaxUsers, "m", config.MaxUsers, "max registered users")
	fs.IntVar(&config.MaxFilesPerUser, "f", config.MaxFilesPerUser, "max files per user")

	fs.IntVar(&config.MaxReplyBytes, "r", config.MaxReplyBytes, "max list reply size in bytes")

	if err := fs.Parse(args); err != nil {
		return err
	}

	// -t only overrides when given, so a finer JSON value survives
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.ReadTimeout = time.Duration(*readTimeout) * time.Second
		}
	})
	return nil
}
