package matcher

import (
	"errors"

	"github.com/seitarof/fillguard/internal/field"
)

// ErrNoTake is returned by Validate when a matcher has no primary predicate.
var ErrNoTake = errors.New("matcher: take predicate is required")

// Matcher narrows a candidate list down to exactly one field or one
// adjacent pair of fields.
type Matcher interface {
	// Match returns the winning fields in traversal order, or false.
	Match(candidates, alreadyMatched []*field.Descriptor) ([]*field.Descriptor, bool)
	// Cardinality is the number of fields a successful match returns.
	Cardinality() int
}

// Validator is implemented by matchers that can detect a malformed
// definition before use.
type Validator interface {
	Validate() error
}

// Predicate is the primary filter for single fields. alreadyMatched holds
// every field claimed by earlier entries of the same rule.
type Predicate func(f *field.Descriptor, alreadyMatched []*field.Descriptor) bool

// TieBreaker narrows a set of single-field contestants.
type TieBreaker func(f *field.Descriptor) bool

// SingleFieldMatcher picks exactly one field.
type SingleFieldMatcher struct {
	take        Predicate
	tieBreakers []TieBreaker
}

// Single builds a SingleFieldMatcher. Tie-breakers run in the given order.
func Single(take Predicate, tieBreakers ...TieBreaker) *SingleFieldMatcher {
	return &SingleFieldMatcher{take: take, tieBreakers: tieBreakers}
}

func (m *SingleFieldMatcher) Cardinality() int { return 1 }

func (m *SingleFieldMatcher) Validate() error {
	if m.take == nil {
		return ErrNoTake
	}
	return nil
}

func (m *SingleFieldMatcher) Match(candidates, alreadyMatched []*field.Descriptor) ([]*field.Descriptor, bool) {
	if m.take == nil {
		return nil, false
	}
	contestants := make([]*field.Descriptor, 0, len(candidates))
	for _, f := range candidates {
		if m.take(f, alreadyMatched) {
			contestants = append(contestants, f)
		}
	}
	winner, ok := narrow(contestants, m.tieBreakers)
	if !ok {
		return nil, false
	}
	return []*field.Descriptor{winner}, true
}

// narrow applies tie-breakers successively. A tie-breaker that would
// eliminate every contestant is ignored. More than one survivor after the
// last tie-breaker is a failure.
func narrow[T any, B ~func(T) bool](contestants []T, tieBreakers []B) (T, bool) {
	var zero T
	switch len(contestants) {
	case 0:
		return zero, false
	case 1:
		return contestants[0], true
	}

	current := contestants
	for _, tb := range tieBreakers {
		next := make([]T, 0, len(current))
		for _, c := range current {
			if tb(c) {
				next = append(next, c)
			}
		}
		switch len(next) {
		case 0:
			continue
		case 1:
			return next[0], true
		}
		current = next
	}
	return zero, false
}
