// Package flagx holds small helpers shared by the config loaders of all
// three binaries: argument filtering so several flag sets can coexist on one
// command line, config-file lookup and port validation.
package flagx

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Listening ports below 1024 are privileged; the coordinator refuses them.
const (
	MinPort = 1024
	MaxPort = 65535
)

var ErrPortOutOfRange = errors.New("port out of range")

// FilterArgs keeps only allowedFlags (and their values) from args.
//
// Both "-p 5000" and "-p=5000" forms are understood. A token following an
// allowed flag is taken as its value unless it starts with '-'.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}

	return filtered
}

// JsonConfigFlags returns the config file path given with -c or -config,
// or "" when neither is present.
func JsonConfigFlags() string {
	var config string

	args := FilterArgs(os.Args[1:], []string{"-c", "-config"})

	fs := flag.NewFlagSet("json", flag.ContinueOnError)
	fs.StringVar(&config, "config", "", "Path to config file")
	fs.StringVar(&config, "c", "", "Path to config file (short)")
	_ = fs.Parse(args)

	return config
}

// ValidatePort checks that port is a non-privileged TCP port.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return fmt.Errorf("%w: %d (allowed %d-%d)", ErrPortOutOfRange, port, MinPort, MaxPort)
	}
	return nil
}

// ParsePort parses a decimal port and validates it with ValidatePort.
func ParsePort(s string) (int, error) {
	port, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if err := ValidatePort(port); err != nil {
		return 0, err
	}
	return port, nil
}
