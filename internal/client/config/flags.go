package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/peerdir/internal/flagx"
)

// parseFlags populates Config fields from command-line flags, ignoring
// flags that belong to other loaders.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-s", "-p", "-w"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerHost, "s", cfg.ServerHost, "coordinator host")
	fs.IntVar(&cfg.ServerPort, "p", cfg.ServerPort, "coordinator port")
	fs.StringVar(&cfg.TimeServiceURL, "w", cfg.TimeServiceURL, "time service URL")

	return fs.Parse(args)
}
