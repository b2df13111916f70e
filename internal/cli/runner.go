package cli

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seitarof/fillguard/internal/harvest"
	"github.com/seitarof/fillguard/internal/metrics"
	"github.com/seitarof/fillguard/internal/origin"
	"github.com/seitarof/fillguard/internal/report"
	"github.com/seitarof/fillguard/internal/scenario"
	"github.com/seitarof/fillguard/internal/strategy"
)

// Runner orchestrates harvest/strategy/report layers.
type Runner interface {
	Run(ctx context.Context, cfg *Config) error
}

// PageSource harvests live pages.
type PageSource interface {
	Harvest(ctx context.Context, url string) (*harvest.Screen, error)
	Close() error
}

// PageSourceFactory opens a PageSource on demand.
type PageSourceFactory func(cfg harvest.BrowserConfig, logger *zap.Logger) (PageSource, error)

// RunnerOption configures a Runner.
type RunnerOption func(*runnerImpl)

type runnerImpl struct {
	rules  []*strategy.Rule
	writer report.Writer
	pages  PageSourceFactory
	logger *zap.Logger
}

// job produces one screen. Errors of a fatal job abort the run; the others
// are reported with the screen.
type job struct {
	name  string
	kind  harvest.SourceKind
	fatal bool
	load  func(ctx context.Context) (*harvest.Screen, error)
}

// NewRunner creates a runner evaluating with the built-in policy.
func NewRunner(logger *zap.Logger, opts ...RunnerOption) Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &runnerImpl{
		rules:  strategy.DefaultRules(),
		writer: report.NewFileWriter(nil),
		pages:  openBrowser,
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithRules replaces the built-in policy.
func WithRules(rules []*strategy.Rule) RunnerOption {
	return func(r *runnerImpl) { r.rules = rules }
}

// WithWriter replaces the report writer.
func WithWriter(w report.Writer) RunnerOption {
	return func(r *runnerImpl) { r.writer = w }
}

// WithPageSource replaces the browser used for --url.
func WithPageSource(f PageSourceFactory) RunnerOption {
	return func(r *runnerImpl) { r.pages = f }
}

func openBrowser(cfg harvest.BrowserConfig, logger *zap.Logger) (PageSource, error) {
	b, err := harvest.NewBrowser(cfg, logger)
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Run evaluates every screen named by cfg and writes one report.
func (r *runnerImpl) Run(ctx context.Context, cfg *Config) error {
	renderer, err := report.NewRenderer(cfg.Output.Format)
	if err != nil {
		return err
	}
	collector := metrics.NewCollector("fillguard", r.logger)
	strat := strategy.New(r.rules,
		strategy.WithLogger(r.logger.Named("strategy")),
		strategy.WithObserver(collector),
	)

	jobs, cleanup, err := r.jobs(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	evals := make([]report.Evaluation, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Parallelism)
	for i, j := range jobs {
		i, j := i, j
		g.Go(func() error {
			start := time.Now()
			screen, err := j.load(gctx)
			if err != nil {
				if j.fatal {
					return fmt.Errorf("harvest screen: %w", err)
				}
				r.logger.Warn("screen not evaluated", zap.String("screen", j.name), zap.Error(err))
				evals[i] = report.Evaluation{Name: j.name, Error: err.Error()}
				return nil
			}
			if screen.Name == "" {
				screen.Name = j.name
			}
			for _, w := range screen.Warnings {
				r.logger.Warn("screen metadata degraded", zap.String("screen", screen.Name), zap.String("detail", w))
			}
			evals[i] = evaluate(screen, cfg, strat)
			collector.ObserveEvaluation(j.kind, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out, err := renderer.Render(evals)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if err := r.writer.Write(cfg.OutputFilename(), out); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if cfg.MetricsFile != "" {
		return collector.WriteFile(cfg.MetricsFile)
	}
	return nil
}

func (r *runnerImpl) jobs(cfg *Config) ([]job, func(), error) {
	noop := func() {}
	switch {
	case cfg.ScreenFile != "":
		return []job{{
			name:  cfg.ScreenFile,
			kind:  harvest.KindDocument,
			fatal: true,
			load:  func(context.Context) (*harvest.Screen, error) { return harvest.Load(cfg.ScreenFile) },
		}}, noop, nil
	case cfg.HTMLFile != "":
		return []job{{
			name:  cfg.HTMLFile,
			kind:  harvest.KindHTML,
			fatal: true,
			load: func(context.Context) (*harvest.Screen, error) {
				return harvest.LoadHTML(cfg.HTMLFile, cfg.PageOrigin)
			},
		}}, noop, nil
	case cfg.URL != "":
		pages, err := r.pages(cfg.browserConfig(), r.logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open browser: %w", err)
		}
		cleanup := func() {
			if err := pages.Close(); err != nil {
				r.logger.Warn("close browser", zap.Error(err))
			}
		}
		return []job{{
			name:  cfg.URL,
			kind:  harvest.KindPage,
			fatal: true,
			load: func(ctx context.Context) (*harvest.Screen, error) {
				return pages.Harvest(ctx, cfg.URL)
			},
		}}, cleanup, nil
	case cfg.BundleFile != "":
		sources, skipped, err := harvest.LoadBundle(cfg.BundleFile)
		if err != nil {
			return nil, nil, err
		}
		logSkippedFiles(r.logger, cfg.BundleFile, skipped)
		jobs := make([]job, 0, len(sources))
		for _, src := range sources {
			src := src
			jobs = append(jobs, job{
				name: src.Name,
				kind: src.Kind,
				load: func(context.Context) (*harvest.Screen, error) { return src.Harvest() },
			})
		}
		return jobs, noop, nil
	default:
		return nil, nil, fmt.Errorf("no input given")
	}
}

func evaluate(s *harvest.Screen, cfg *Config, strat *strategy.Strategy) report.Evaluation {
	mode, isBrowser := cfg.modeFor(s)
	ev := report.Evaluation{
		Name:    s.Name,
		Package: s.Package,
		Mode:    mode.String(),
		Manual:  s.Manual,
		Ignored: s.Ignored,
	}

	res, ok := strat.Resolve(s.Fields, mode)
	if !ok {
		return ev
	}
	ev.Matched = true
	ev.Rule = res.Rule

	view, err := report.FromScenario(res.Scenario, s.Manual)
	if err != nil {
		ev.Error = err.Error()
		return ev
	}
	if isBrowser && s.Package != "" && !cfg.Browsers.SupportsSave(s.Package) {
		view.Savable = false
	}
	ev.Scenario = view

	if fo, ok := formOrigin(s, isBrowser, res.Scenario); ok {
		ev.FormOrigin = fo.String()
	}
	return ev
}

func formOrigin(s *harvest.Screen, isBrowser bool, sc scenario.Scenario) (origin.FormOrigin, bool) {
	fo, ok := origin.Determine(s.Package, isBrowser, s.WebOrigins, sc)
	if !ok || fo.Identifier == "" {
		return origin.FormOrigin{}, false
	}
	return fo, true
}

func logSkippedFiles(logger *zap.Logger, bundle string, skipped []string) {
	for _, name := range skipped {
		logger.Warn("bundle file is not a screen, skipped",
			zap.String("bundle", bundle),
			zap.String("file", name),
		)
	}
}
