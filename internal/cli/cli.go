package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/seitarof/fillguard/internal/report"
	"github.com/seitarof/fillguard/internal/strategy"
)

// ParseArgs parses command line arguments into Config. Settings from
// --config are applied first; flags given explicitly override them.
func ParseArgs(args []string) (*Config, error) {
	var (
		flags        Config
		multiOrigin  bool
		singleOrigin bool
	)
	defaults := DefaultConfig()

	fs := pflag.NewFlagSet("fillguard", pflag.ContinueOnError)
	fs.StringVarP(&flags.ConfigFile, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&flags.ScreenFile, "screen", "s", "", "screen document (YAML or JSON)")
	fs.StringVar(&flags.HTMLFile, "html", "", "static HTML page")
	fs.StringVar(&flags.PageOrigin, "origin", "", "web origin of the --html page")
	fs.StringVarP(&flags.URL, "url", "u", "", "live page to harvest in a browser")
	fs.StringVarP(&flags.BundleFile, "bundle", "b", "", "txtar archive of screens")
	fs.StringVarP(&flags.Output.Format, "format", "f", defaults.Output.Format, "report format: "+strings.Join(report.Formats(), ", "))
	fs.StringVarP(&flags.Output.File, "output", "o", defaults.Output.File, "report file, - for stdout")
	fs.BoolVar(&multiOrigin, "multi-origin", false, "evaluate every screen in multi-origin mode")
	fs.BoolVar(&singleOrigin, "single-origin", false, "evaluate every screen in single-origin mode")
	fs.StringVar(&flags.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file")
	fs.StringVar(&flags.Log.Level, "log-level", defaults.Log.Level, "log level")
	fs.IntVarP(&flags.Parallelism, "parallelism", "p", defaults.Parallelism, "screens evaluated concurrently")
	fs.BoolVarP(&flags.ShowVersion, "version", "v", false, "show version")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if flags.ShowVersion {
		return &Config{ShowVersion: true}, nil
	}

	cfg := defaults
	if flags.ConfigFile != "" {
		if err := cfg.LoadFile(flags.ConfigFile); err != nil {
			return nil, err
		}
	}
	cfg.ConfigFile = flags.ConfigFile
	cfg.ScreenFile = strings.TrimSpace(flags.ScreenFile)
	cfg.HTMLFile = strings.TrimSpace(flags.HTMLFile)
	cfg.PageOrigin = strings.TrimSpace(flags.PageOrigin)
	cfg.URL = strings.TrimSpace(flags.URL)
	cfg.BundleFile = strings.TrimSpace(flags.BundleFile)

	if fs.Changed("format") {
		cfg.Output.Format = flags.Output.Format
	}
	if fs.Changed("output") {
		cfg.Output.File = flags.Output.File
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = flags.MetricsFile
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = flags.Log.Level
	}
	if fs.Changed("parallelism") {
		cfg.Parallelism = flags.Parallelism
	}

	switch {
	case multiOrigin && singleOrigin:
		return nil, fmt.Errorf("--multi-origin and --single-origin are mutually exclusive")
	case multiOrigin:
		m := strategy.MultiOrigin
		cfg.Mode = &m
	case singleOrigin:
		m := strategy.SingleOrigin
		cfg.Mode = &m
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	inputs := 0
	for _, in := range []string{c.ScreenFile, c.HTMLFile, c.URL, c.BundleFile} {
		if in != "" {
			inputs++
		}
	}
	if inputs != 1 {
		return fmt.Errorf("exactly one of --screen, --html, --url or --bundle is required")
	}
	if c.PageOrigin != "" && c.HTMLFile == "" {
		return fmt.Errorf("--origin is only valid with --html")
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if _, err := report.NewRenderer(c.Output.Format); err != nil {
		return err
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("unsupported log format %q", c.Log.Format)
	}
	return nil
}
