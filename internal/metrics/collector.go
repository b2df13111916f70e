// Package metrics counts rule outcomes so a policy can be tuned against a
// corpus of harvested screens.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/seitarof/fillguard/internal/harvest"
	"github.com/seitarof/fillguard/internal/strategy"
)

// Collector implements strategy.Observer on top of a caller owned registry.
type Collector struct {
	registry *prometheus.Registry

	ruleMatches        *prometheus.CounterVec
	ruleRejections     *prometheus.CounterVec
	evaluations        *prometheus.CounterVec
	evaluationDuration *prometheus.HistogramVec

	logger *zap.Logger
}

var _ strategy.Observer = (*Collector)(nil)

// NewCollector registers the fillguard metrics under namespace on a fresh
// registry.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	c := &Collector{
		registry: reg,
		logger:   logger.With(zap.String("component", "metrics")),
	}

	c.ruleMatches = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_matches_total",
			Help:      "Number of evaluations won by a rule",
		},
		[]string{"rule", "mode"},
	)

	c.ruleRejections = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_rejections_total",
			Help:      "Number of times a rule was tried and rejected",
		},
		[]string{"rule", "reason"},
	)

	c.evaluations = f.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of resolved screens by outcome",
		},
		[]string{"mode", "outcome"},
	)

	c.evaluationDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Time spent harvesting and resolving one screen",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"kind"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))
	return c
}

// Registry exposes the registry the collector writes to.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) RuleMatched(rule string, mode strategy.OriginMode) {
	c.ruleMatches.WithLabelValues(rule, mode.String()).Inc()
	c.evaluations.WithLabelValues(mode.String(), "matched").Inc()
}

func (c *Collector) RuleRejected(rule string, reason strategy.Reason) {
	c.ruleRejections.WithLabelValues(rule, reason.String()).Inc()
}

func (c *Collector) NoMatch(mode strategy.OriginMode) {
	c.evaluations.WithLabelValues(mode.String(), "unmatched").Inc()
}

// ObserveEvaluation records how long one screen of the given kind took
// end to end.
func (c *Collector) ObserveEvaluation(kind harvest.SourceKind, d time.Duration) {
	c.evaluationDuration.WithLabelValues(kind.String()).Observe(d.Seconds())
}

// WriteFile writes every metric in the text exposition format.
func (c *Collector) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	c.logger.Info("metrics written", zap.String("path", path))
	return nil
}
