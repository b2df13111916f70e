package strategy

import (
	"errors"
	"fmt"

	"github.com/seitarof/fillguard/internal/field"
	"github.com/seitarof/fillguard/internal/matcher"
	"github.com/seitarof/fillguard/internal/scenario"
)

// Rule construction errors. They indicate a defect in the policy, not in
// the screen being evaluated.
var (
	ErrNoEntries          = errors.New("rule has no entries")
	ErrNoRequiredEntry    = errors.New("rule has no required entry")
	ErrDuplicateUsername  = errors.New("rule has more than one username entry")
	ErrUsernamePair       = errors.New("username entry must match a single field")
	ErrMixedPasswordKinds = errors.New("rule mixes generic and current/new password entries")
	ErrNilMatcher         = errors.New("entry has no matcher")
)

// FieldType is the role an entry assigns to the fields it matches.
type FieldType int

const (
	Username FieldType = iota
	CurrentPassword
	NewPassword
	GenericPassword
)

func (t FieldType) String() string {
	switch t {
	case Username:
		return "username"
	case CurrentPassword:
		return "current-password"
	case NewPassword:
		return "new-password"
	case GenericPassword:
		return "generic-password"
	default:
		return "unknown"
	}
}

// Entry is one step of a rule.
type Entry struct {
	Type     FieldType
	Matcher  matcher.Matcher
	Optional bool
}

// Rule is an ordered list of entries evaluated against one screen.
type Rule struct {
	name                 string
	entries              []Entry
	singleOriginEligible bool
}

// NewRule validates entries and builds a rule. All construction errors
// are reported together.
func NewRule(name string, singleOriginEligible bool, entries ...Entry) (*Rule, error) {
	var errs []error
	if len(entries) == 0 {
		errs = append(errs, ErrNoEntries)
	}

	var usernames, required int
	var classified, generic bool
	for i, e := range entries {
		if e.Matcher == nil {
			errs = append(errs, fmt.Errorf("entry %d (%s): %w", i, e.Type, ErrNilMatcher))
			continue
		}
		if v, ok := e.Matcher.(matcher.Validator); ok {
			if err := v.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("entry %d (%s): %w", i, e.Type, err))
			}
		}
		if !e.Optional {
			required++
		}
		switch e.Type {
		case Username:
			usernames++
			if e.Matcher.Cardinality() != 1 {
				errs = append(errs, fmt.Errorf("entry %d: %w", i, ErrUsernamePair))
			}
		case CurrentPassword, NewPassword:
			classified = true
		case GenericPassword:
			generic = true
		default:
			errs = append(errs, fmt.Errorf("entry %d: unknown field type %d", i, e.Type))
		}
	}
	if usernames > 1 {
		errs = append(errs, ErrDuplicateUsername)
	}
	if classified && generic {
		errs = append(errs, ErrMixedPasswordKinds)
	}
	if len(entries) > 0 && required == 0 {
		errs = append(errs, ErrNoRequiredEntry)
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("rule %q: %w", name, errors.Join(errs...))
	}

	return &Rule{
		name:                 name,
		entries:              append([]Entry(nil), entries...),
		singleOriginEligible: singleOriginEligible,
	}, nil
}

// MustRule is NewRule for policies fixed at compile time.
func MustRule(name string, singleOriginEligible bool, entries ...Entry) *Rule {
	r, err := NewRule(name, singleOriginEligible, entries...)
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Rule) Name() string { return r.name }

// SingleOriginEligible reports whether the rule is attempted in
// SingleOrigin mode.
func (r *Rule) SingleOriginEligible() bool { return r.singleOriginEligible }

// Entries returns a copy of the rule's entries.
func (r *Rule) Entries() []Entry { return append([]Entry(nil), r.entries...) }

// outcome describes why a rule did or did not produce a scenario.
type outcome struct {
	scenario scenario.Scenario
	reason   Reason
	// entry is the failing required entry for ReasonUnmatched.
	entry Entry
	// origins are the distinct origins for ReasonOrigin.
	origins []string
}

// try runs the entries in order, then the origin check.
func (r *Rule) try(passwords, usernames []*field.Descriptor, mode OriginMode) outcome {
	if mode == SingleOrigin && !r.singleOriginEligible {
		return outcome{reason: ReasonIneligible}
	}

	var b scenario.Builder
	var alreadyMatched []*field.Descriptor
	for _, e := range r.entries {
		candidates := passwords
		if e.Type == Username {
			candidates = usernames
		}
		matched, ok := e.Matcher.Match(candidates, alreadyMatched)
		if !ok {
			if e.Optional {
				continue
			}
			return outcome{reason: ReasonUnmatched, entry: e}
		}
		switch e.Type {
		case Username:
			b.Username = matched[0]
			// A username that may be saved is not always one we may fill.
			b.FillUsername = matched[0].Fillable()
		case CurrentPassword:
			b.CurrentPassword = append(b.CurrentPassword, matched...)
		case NewPassword:
			b.NewPassword = append(b.NewPassword, matched...)
		case GenericPassword:
			b.GenericPassword = append(b.GenericPassword, matched...)
		}
		alreadyMatched = append(alreadyMatched, matched...)
	}

	sc, err := b.Build()
	if err != nil {
		// NewRule forbids mixed rules, so this is unreachable for a valid rule.
		return outcome{reason: ReasonUnmatched}
	}
	if ok, origins := originConsistent(sc, mode); !ok {
		return outcome{reason: ReasonOrigin, origins: origins}
	}
	return outcome{scenario: sc, reason: ReasonMatched}
}
