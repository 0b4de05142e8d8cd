package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/knaughts/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-u string     backend base URL
//	-i string     admin identity
//	-r duration   token refresh interval
//	-t duration   backend request timeout
//	-s duration   pagination session timeout
//	-health addr  gRPC health listen address ("" disables)
//	-l string     log format (json|text)
//	-d            debug logging
//
// os.Args is filtered with flagx.FilterArgs first so flags owned by other
// loaders (-c, -e) do not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-u", "-i", "-r", "-t", "-s", "-health", "-l", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "backend base URL")
	fs.StringVar(&cfg.Identity, "i", cfg.Identity, "backend admin identity")
	fs.DurationVar(&cfg.RefreshInterval, "r", cfg.RefreshInterval, "token refresh interval")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "backend request timeout")
	fs.DurationVar(&cfg.SessionTimeout, "s", cfg.SessionTimeout, "pagination session inactivity timeout")
	fs.StringVar(&cfg.HealthAddr, "health", cfg.HealthAddr, "gRPC health listen address, empty to disable")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format: json or text")
	fs.BoolVar(&cfg.Debug, "d", cfg.Debug, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
