package matcher

import (
	"github.com/seitarof/fillguard/internal/field"
)

// Pair is two fields adjacent in traversal order.
type Pair struct {
	First  *field.Descriptor
	Second *field.Descriptor
}

// All reports whether pred holds for both fields.
func (p Pair) All(pred func(*field.Descriptor) bool) bool {
	return pred(p.First) && pred(p.Second)
}

// Any reports whether pred holds for at least one field.
func (p Pair) Any(pred func(*field.Descriptor) bool) bool {
	return pred(p.First) || pred(p.Second)
}

// None reports whether pred holds for neither field.
func (p Pair) None(pred func(*field.Descriptor) bool) bool {
	return !pred(p.First) && !pred(p.Second)
}

// Fields returns the pair in traversal order.
func (p Pair) Fields() []*field.Descriptor {
	return []*field.Descriptor{p.First, p.Second}
}

// PairPredicate is the primary filter for pairs.
type PairPredicate func(p Pair, alreadyMatched []*field.Descriptor) bool

// PairTieBreaker narrows a set of pair contestants.
type PairTieBreaker func(p Pair) bool

// PairOfFieldsMatcher picks exactly one pair of adjacent fields.
type PairOfFieldsMatcher struct {
	take        PairPredicate
	tieBreakers []PairTieBreaker
}

// PairOf builds a PairOfFieldsMatcher.
func PairOf(take PairPredicate, tieBreakers ...PairTieBreaker) *PairOfFieldsMatcher {
	return &PairOfFieldsMatcher{take: take, tieBreakers: tieBreakers}
}

func (m *PairOfFieldsMatcher) Cardinality() int { return 2 }

func (m *PairOfFieldsMatcher) Validate() error {
	if m.take == nil {
		return ErrNoTake
	}
	return nil
}

func (m *PairOfFieldsMatcher) Match(candidates, alreadyMatched []*field.Descriptor) ([]*field.Descriptor, bool) {
	if m.take == nil {
		return nil, false
	}
	var contestants []Pair
	for i := 0; i+1 < len(candidates); i++ {
		p := Pair{First: candidates[i], Second: candidates[i+1]}
		// Candidates are pre-filtered, so neighbours in the slice are not
		// necessarily neighbours on screen.
		if !p.First.DirectlyPrecedes(p.Second) {
			continue
		}
		if m.take(p, alreadyMatched) {
			contestants = append(contestants, p)
		}
	}
	winner, ok := narrow(contestants, m.tieBreakers)
	if !ok {
		return nil, false
	}
	return winner.Fields(), true
}
