// Package strategy resolves a screen's fields into a scenario by trying an
// ordered list of rules.
package strategy

import (
	"go.uber.org/zap"

	"github.com/seitarof/fillguard/internal/field"
	"github.com/seitarof/fillguard/internal/scenario"
)

// Reason is the result of trying one rule.
type Reason int

const (
	ReasonMatched Reason = iota
	// ReasonIneligible means the rule is not attempted in the current mode.
	ReasonIneligible
	// ReasonUnmatched means a required entry found no field.
	ReasonUnmatched
	// ReasonOrigin means the fields matched but failed the origin check.
	ReasonOrigin
)

func (r Reason) String() string {
	switch r {
	case ReasonMatched:
		return "matched"
	case ReasonIneligible:
		return "ineligible"
	case ReasonUnmatched:
		return "unmatched"
	case ReasonOrigin:
		return "origin"
	default:
		return "unknown"
	}
}

// Observer is notified about every evaluation. Implementations must be safe
// for concurrent use.
type Observer interface {
	RuleMatched(rule string, mode OriginMode)
	RuleRejected(rule string, reason Reason)
	NoMatch(mode OriginMode)
}

// Resolution is a scenario together with the rule that produced it.
type Resolution struct {
	Rule     string
	Scenario scenario.Scenario
}

// Strategy is an immutable, ordered list of rules.
type Strategy struct {
	rules    []*Rule
	logger   *zap.Logger
	observer Observer
}

// Option configures a Strategy.
type Option func(*Strategy)

// WithLogger sets the logger used for per-rule debug records.
func WithLogger(l *zap.Logger) Option {
	return func(s *Strategy) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(s *Strategy) { s.observer = o }
}

// New builds a strategy trying rules in the given order.
func New(rules []*Rule, opts ...Option) *Strategy {
	s := &Strategy{
		rules:  append([]*Rule(nil), rules...),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the rules in priority order.
func (s *Strategy) Rules() []*Rule { return append([]*Rule(nil), s.rules...) }

// Apply returns the scenario of the first rule that matches fields and
// passes the origin check. No match is a normal result.
func (s *Strategy) Apply(fields []*field.Descriptor, mode OriginMode) (scenario.Scenario, bool) {
	res, ok := s.Resolve(fields, mode)
	return res.Scenario, ok
}

// Resolve is Apply but also reports the winning rule.
func (s *Strategy) Resolve(fields []*field.Descriptor, mode OriginMode) (Resolution, bool) {
	var passwords, usernames []*field.Descriptor
	for _, f := range fields {
		if f.PasswordCertainty() >= field.Possible {
			passwords = append(passwords, f)
		}
		if f.UsernameCertainty() >= field.Possible {
			usernames = append(usernames, f)
		}
	}
	log := s.logger.With(zap.Stringer("mode", mode))
	log.Debug("resolving fields",
		zap.Int("fields", len(fields)),
		zap.Int("passwordCandidates", len(passwords)),
		zap.Int("usernameCandidates", len(usernames)),
	)

	for _, r := range s.rules {
		out := r.try(passwords, usernames, mode)
		switch out.reason {
		case ReasonMatched:
			log.Debug("rule matched", zap.String("rule", r.name))
			if s.observer != nil {
				s.observer.RuleMatched(r.name, mode)
			}
			return Resolution{Rule: r.name, Scenario: out.scenario}, true
		case ReasonIneligible:
			log.Debug("rule skipped", zap.String("rule", r.name))
			continue
		case ReasonUnmatched:
			log.Debug("rule did not match",
				zap.String("rule", r.name),
				zap.Stringer("entry", out.entry.Type),
			)
		case ReasonOrigin:
			log.Debug("rule failed origin check",
				zap.String("rule", r.name),
				zap.Strings("origins", out.origins),
			)
		}
		if s.observer != nil {
			s.observer.RuleRejected(r.name, out.reason)
		}
	}

	log.Debug("no rule matched")
	if s.observer != nil {
		s.observer.NoMatch(mode)
	}
	return Resolution{}, false
}
