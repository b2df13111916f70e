package cli

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/seitarof/fillguard/internal/harvest"
	"github.com/seitarof/fillguard/internal/report"
)

type mockWriter struct {
	mu       sync.Mutex
	filename string
	data     []byte
	calls    int
}

func (w *mockWriter) Write(filename string, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filename = filename
	w.data = append([]byte(nil), data...)
	w.calls++
	return nil
}

func (w *mockWriter) evaluations(t *testing.T) []report.Evaluation {
	t.Helper()
	var evals []report.Evaluation
	require.NoError(t, json.Unmarshal(w.data, &evals))
	return evals
}

type mockPageSource struct {
	pages  map[string]string
	closed bool
	urls   []string
}

func (p *mockPageSource) Harvest(_ context.Context, url string) (*harvest.Screen, error) {
	p.urls = append(p.urls, url)
	body, ok := p.pages[url]
	if !ok {
		return nil, errors.New("page not found")
	}
	s, err := harvest.FromHTML(strings.NewReader(body), strings.TrimSuffix(url, "/login"))
	if err != nil {
		return nil, err
	}
	s.Name = url
	return s, nil
}

func (p *mockPageSource) Close() error {
	p.closed = true
	return nil
}

func jsonConfig(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	cfg.Output.Format = "json"
	mutate(cfg)
	return cfg
}

func TestRunner_Run_URLUsesPageSource(t *testing.T) {
	pages := &mockPageSource{pages: map[string]string{
		"https://accounts.example.com/login": `
<input type="email" id="email" autocomplete="username">
<input type="password" id="password" autocomplete="current-password">`,
	}}
	w := &mockWriter{}
	var gotCfg harvest.BrowserConfig
	r := NewRunner(zap.NewNop(),
		WithWriter(w),
		WithPageSource(func(cfg harvest.BrowserConfig, _ *zap.Logger) (PageSource, error) {
			gotCfg = cfg
			return pages, nil
		}),
	)

	cfg := jsonConfig(func(c *Config) {
		c.URL = "https://accounts.example.com/login"
		c.Browser.ControlURL = "ws://127.0.0.1:9222"
	})
	require.NoError(t, r.Run(context.Background(), cfg))

	assert.Equal(t, "ws://127.0.0.1:9222", gotCfg.ControlURL)
	assert.True(t, pages.closed, "browser should be closed after the run")
	assert.Equal(t, "-", w.filename)

	evals := w.evaluations(t)
	require.Len(t, evals, 1)
	ev := evals[0]
	assert.Equal(t, "current-password", ev.Rule)
	assert.Equal(t, "multi-origin", ev.Mode)
	assert.Equal(t, "web:example.com", ev.FormOrigin)
	require.NotNil(t, ev.Scenario)
	assert.Equal(t, "email", ev.Scenario.Username)
	assert.Equal(t, []string{"password"}, ev.Scenario.CurrentPassword)
}

func TestRunner_Run_PageSourceError(t *testing.T) {
	r := NewRunner(zap.NewNop(),
		WithWriter(&mockWriter{}),
		WithPageSource(func(harvest.BrowserConfig, *zap.Logger) (PageSource, error) {
			return nil, errors.New("no chrome")
		}),
	)
	err := r.Run(context.Background(), jsonConfig(func(c *Config) { c.URL = "https://example.com" }))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open browser")
}

func TestRunner_Run_MissingScreenIsFatal(t *testing.T) {
	w := &mockWriter{}
	r := NewRunner(zap.NewNop(), WithWriter(w))

	err := r.Run(context.Background(), jsonConfig(func(c *Config) {
		c.ScreenFile = filepath.Join(t.TempDir(), "missing.yaml")
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "harvest screen")
	assert.Zero(t, w.calls, "no report is written when the input cannot be read")
}

func TestRunner_Run_BundleKeepsOrderAndReportsBrokenEntries(t *testing.T) {
	bundle := `-- broken.yaml --
windows:
  - id: a
    colour: red
-- notes.txt --
skipped
-- login.yaml --
package: com.example.app
windows:
  - id: user
    id_entry: username
    class_name: android.widget.EditText
    input_type: text
  - id: pass
    id_entry: password
    class_name: android.widget.EditText
    input_type: textPassword
`
	path := filepath.Join(t.TempDir(), "screens.txtar")
	require.NoError(t, os.WriteFile(path, []byte(bundle), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	w := &mockWriter{}
	r := NewRunner(zap.New(core), WithWriter(w))

	require.NoError(t, r.Run(context.Background(), jsonConfig(func(c *Config) {
		c.BundleFile = path
		c.Parallelism = 2
	})))

	evals := w.evaluations(t)
	require.Len(t, evals, 2)
	assert.Equal(t, "broken.yaml", evals[0].Name)
	assert.Contains(t, evals[0].Error, "colour")
	assert.Equal(t, "login.yaml", evals[1].Name)
	assert.Equal(t, "generic-password", evals[1].Rule)
	assert.Equal(t, "app:com.example.app", evals[1].FormOrigin)

	assert.Equal(t, 1, logs.FilterMessage("bundle file is not a screen, skipped").FilterField(zap.String("file", "notes.txt")).Len())
	assert.Equal(t, 1, logs.FilterMessage("screen not evaluated").Len())
}

func TestRunner_Run_WritesMetricsFile(t *testing.T) {
	dir := t.TempDir()
	screen := filepath.Join(dir, "search.yaml")
	require.NoError(t, os.WriteFile(screen, []byte(`
package: com.example.notes
windows:
  - id: search_box
    id_entry: search
    class_name: android.widget.EditText
    input_type: text
`), 0o644))
	metricsFile := filepath.Join(dir, "fillguard.prom")

	w := &mockWriter{}
	r := NewRunner(zap.NewNop(), WithWriter(w))
	require.NoError(t, r.Run(context.Background(), jsonConfig(func(c *Config) {
		c.ScreenFile = screen
		c.MetricsFile = metricsFile
	})))

	evals := w.evaluations(t)
	require.Len(t, evals, 1)
	assert.False(t, evals[0].Matched)

	b, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `fillguard_evaluations_total{mode="multi-origin",outcome="unmatched"} 1`)
	assert.Contains(t, string(b), `fillguard_rule_rejections_total{reason="unmatched",rule="generic-password"} 1`)
	assert.Contains(t, string(b), `fillguard_evaluation_duration_seconds_count{kind="document"} 1`)
}

func TestRunner_Run_ManualScreenWithDegradedMetadata(t *testing.T) {
	screen := filepath.Join(t.TempDir(), "login.yaml")
	require.NoError(t, os.WriteFile(screen, []byte(`
package: com.example.app
manual: true
windows:
  - id: banner
    class_name: android.widget.EditText
    visibility: collapsed
  - id: user
    id_entry: username
    class_name: android.widget.EditText
    input_type: text
  - id: pass
    id_entry: password
    class_name: android.widget.EditText
    input_type: textPassword
`), 0o644))

	core, logs := observer.New(zap.WarnLevel)
	w := &mockWriter{}
	r := NewRunner(zap.New(core), WithWriter(w))
	require.NoError(t, r.Run(context.Background(), jsonConfig(func(c *Config) { c.ScreenFile = screen })))

	evals := w.evaluations(t)
	require.Len(t, evals, 1)
	ev := evals[0]
	assert.True(t, ev.Manual)
	assert.Equal(t, []string{"banner"}, ev.Ignored)
	require.NotNil(t, ev.Scenario)
	assert.Equal(t, []string{"match", "search", "generate"}, ev.Scenario.Offered)

	degraded := logs.FilterMessage("screen metadata degraded")
	require.Equal(t, 1, degraded.Len())
	assert.Contains(t, degraded.All()[0].ContextMap()["detail"], "collapsed")
}
