package matcher

import (
	"fmt"
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/seitarof/fillguard/internal/field"
)

var ids = []string{"a", "pwd", "password", "pin", "secret"}

func drawFields(rt *rapid.T) []*field.Descriptor {
	n := rapid.IntRange(0, 10).Draw(rt, "n")
	attrs := make([]field.Attributes, n)
	for i := range attrs {
		id := rapid.SampledFrom(ids).Draw(rt, fmt.Sprintf("id_%d", i))
		attrs[i] = passwordField(fmt.Sprintf("%s-%d", id, i), rapid.Bool().Draw(rt, fmt.Sprintf("focused_%d", i)))
	}
	all := field.NewList(attrs)
	// Random removals emulate the pre-filtering done before matching.
	var kept []*field.Descriptor
	for i, f := range all {
		if rapid.Bool().Draw(rt, fmt.Sprintf("keep_%d", i)) {
			kept = append(kept, f)
		}
	}
	return kept
}

var singleTieBreakers = []TieBreaker{
	func(f *field.Descriptor) bool { return f.PasswordCertainty() >= field.Likely },
	func(f *field.Descriptor) bool { return f.Focused() },
}

func TestProperty_SingleReturnsExactlyOne(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fields := drawFields(rt)
		m := Single(isPossible, singleTieBreakers...)

		got, ok := m.Match(fields, nil)
		if ok && len(got) != 1 {
			rt.Fatalf("matched %d fields", len(got))
		}
		again, okAgain := m.Match(fields, nil)
		if ok != okAgain || !slices.Equal(got, again) {
			rt.Fatalf("match is not deterministic")
		}
	})
}

func TestProperty_PairIsAdjacent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fields := drawFields(rt)
		m := PairOf(
			func(Pair, []*field.Descriptor) bool { return true },
			func(p Pair) bool { return p.Any(func(f *field.Descriptor) bool { return f.Focused() }) },
			func(p Pair) bool {
				return p.All(func(f *field.Descriptor) bool { return f.PasswordCertainty() >= field.Likely })
			},
		)

		got, ok := m.Match(fields, nil)
		if !ok {
			return
		}
		if len(got) != 2 {
			rt.Fatalf("matched %d fields", len(got))
		}
		if got[1].Index()-got[0].Index() != 1 {
			rt.Fatalf("pair %d,%d is not adjacent", got[0].Index(), got[1].Index())
		}
	})
}
