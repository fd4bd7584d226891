package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	UserID        string
	Rest          string
	Backend       string
	DBPath        string
	FinishCmd     string
	Addr          string
	LogLevel      string
	DisableNotify bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			UserID:        ctx.String("user"),
			Rest:          ctx.String("rest"),
			Backend:       ctx.String("backend"),
			DBPath:        ctx.String("db"),
			FinishCmd:     ctx.String("finish-cmd"),
			Addr:          ctx.String("addr"),
			LogLevel:      ctx.String("log-level"),
			DisableNotify: ctx.Bool("disable-notification"),
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	if opts.Rest != "" {
		dur, err := parseDuration(opts.Rest)
		if err != nil {
			return errInvalidCLIDuration.Fmt("rest", err)
		}

		c.Session.RestDuration = dur
	}

	if opts.UserID != "" {
		c.Session.UserID = strings.TrimSpace(opts.UserID)
	}

	if opts.Backend != "" {
		c.Storage.Backend = opts.Backend
	}

	if opts.DBPath != "" {
		c.Storage.Path = opts.DBPath
	}

	if opts.FinishCmd != "" {
		c.Hooks.FinishCmd = opts.FinishCmd
	}

	if opts.Addr != "" {
		c.Server.Addr = opts.Addr
	}

	if opts.LogLevel != "" {
		c.Log.Level = opts.LogLevel
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	return nil
}

// parseDuration accepts Go duration strings as well as bare numbers, which
// are read as seconds.
func parseDuration(s string) (time.Duration, error) {
	dur, err := time.ParseDuration(s)
	if err == nil {
		return dur, nil
	}

	secs, err := time.ParseDuration(s + "s")
	if err != nil {
		return 0, fmt.Errorf("invalid duration format: %s", s)
	}

	return secs, nil
}
