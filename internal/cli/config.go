package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seitarof/fillguard/internal/harvest"
	"github.com/seitarof/fillguard/internal/strategy"
)

// Config stores the options for a single evaluation run.
type Config struct {
	// Inputs come from flags only.
	ConfigFile  string `yaml:"-"`
	ScreenFile  string `yaml:"-"`
	HTMLFile    string `yaml:"-"`
	PageOrigin  string `yaml:"-"`
	URL         string `yaml:"-"`
	BundleFile  string `yaml:"-"`
	ShowVersion bool   `yaml:"-"`
	// Mode forces the origin mode for every screen when set.
	Mode *strategy.OriginMode `yaml:"-"`

	Log         LogConfig     `yaml:"log"`
	Output      OutputConfig  `yaml:"output"`
	Browsers    BrowserLists  `yaml:"browsers"`
	Parallelism int           `yaml:"parallelism"`
	MetricsFile string        `yaml:"metrics_file"`
	Browser     BrowserConfig `yaml:"browser"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type OutputConfig struct {
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// BrowserLists are the browser capability lists by package name.
type BrowserLists struct {
	Trusted     []string `yaml:"trusted"`
	MultiOrigin []string `yaml:"multi_origin"`
	SaveSupport []string `yaml:"save_support"`
}

type BrowserConfig struct {
	ControlURL string        `yaml:"control_url"`
	Headless   bool          `yaml:"headless"`
	Timeout    time.Duration `yaml:"timeout"`
}

var (
	defaultMultiOriginBrowsers = []string{
		"com.duckduckgo.mobile.android",
		"org.mozilla.klar",
		"org.mozilla.focus",
		"org.mozilla.fenix",
		"org.mozilla.fenix.nightly",
		"org.mozilla.fennec_aurora",
		"org.mozilla.firefox",
		"org.mozilla.firefox_beta",
		"org.torproject.torbrowser",
	}

	defaultSaveSupportBrowsers = []string{
		"com.duckduckgo.mobile.android",
		"org.mozilla.klar",
		"org.mozilla.focus",
		"org.mozilla.fenix",
		"org.mozilla.fenix.nightly",
		"org.mozilla.fennec_aurora",
	}

	defaultTrustedBrowsers = []string{
		"com.amazon.cloud9",
		"com.android.browser",
		"com.android.chrome",
		"com.brave.browser",
		"com.chrome.beta",
		"com.chrome.canary",
		"com.chrome.dev",
		"com.duckduckgo.mobile.android",
		"com.ecosia.android",
		"com.google.android.apps.chrome",
		"com.google.android.apps.chrome_dev",
		"com.kiwibrowser.browser",
		"com.microsoft.emmx",
		"com.opera.browser",
		"com.opera.browser.beta",
		"com.opera.mini.native",
		"com.opera.mini.native.beta",
		"com.opera.touch",
		"com.qwant.liberty",
		"com.sec.android.app.sbrowser",
		"com.sec.android.app.sbrowser.beta",
		"com.vivaldi.browser",
		"com.yandex.browser",
		"mark.via.gp",
		"org.bromite.bromite",
		"org.chromium.chrome",
		"org.codeaurora.swe.browser",
		"org.mozilla.fenix",
		"org.mozilla.fenix.nightly",
		"org.mozilla.fennec_aurora",
		"org.mozilla.fennec_fdroid",
		"org.mozilla.firefox",
		"org.mozilla.firefox_beta",
		"org.mozilla.focus",
		"org.mozilla.klar",
		"org.mozilla.reference.browser",
		"org.mozilla.rocket",
		"org.torproject.torbrowser",
	}
)

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Log:    LogConfig{Level: "info", Format: "console"},
		Output: OutputConfig{Format: "text", File: "-"},
		Browsers: BrowserLists{
			Trusted:     slices.Clone(defaultTrustedBrowsers),
			MultiOrigin: slices.Clone(defaultMultiOriginBrowsers),
			SaveSupport: slices.Clone(defaultSaveSupportBrowsers),
		},
		Parallelism: 4,
		Browser:     BrowserConfig{Headless: true, Timeout: 30 * time.Second},
	}
}

// LoadFile overlays the YAML file at path onto c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	return nil
}

// IsBrowser reports whether pkg is a browser whose web origins are trusted.
func (l BrowserLists) IsBrowser(pkg string) bool { return slices.Contains(l.Trusted, pkg) }

// SupportsMultiOrigin reports whether pkg reports the origin of every frame.
func (l BrowserLists) SupportsMultiOrigin(pkg string) bool {
	return slices.Contains(l.MultiOrigin, pkg)
}

func (l BrowserLists) SupportsSave(pkg string) bool { return slices.Contains(l.SaveSupport, pkg) }

// modeFor picks the origin mode of a screen. A page harvested directly has
// no package and carries per-frame origins.
func (c *Config) modeFor(s *harvest.Screen) (mode strategy.OriginMode, isBrowser bool) {
	isBrowser = c.Browsers.IsBrowser(s.Package) || (s.Package == "" && len(s.WebOrigins) > 0)
	switch {
	case c.Mode != nil:
		mode = *c.Mode
	case s.MultiOrigin != nil:
		if !*s.MultiOrigin {
			mode = strategy.SingleOrigin
		}
	case isBrowser && s.Package != "" && !c.Browsers.SupportsMultiOrigin(s.Package):
		mode = strategy.SingleOrigin
	}
	return mode, isBrowser
}

func (c *Config) browserConfig() harvest.BrowserConfig {
	return harvest.BrowserConfig{
		ControlURL: c.Browser.ControlURL,
		Headless:   c.Browser.Headless,
		Timeout:    c.Browser.Timeout,
	}
}

// OutputFilename returns the report destination; "-" is stdout.
func (c *Config) OutputFilename() string {
	return c.Output.File
}
