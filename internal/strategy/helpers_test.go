package strategy

import (
	"sync"

	"github.com/seitarof/fillguard/internal/field"
	"github.com/seitarof/fillguard/internal/scenario"
)

type attrOpt func(*field.Attributes)

func input(id, typ string, opts ...attrOpt) field.Attributes {
	a := field.Attributes{
		Handle:       id,
		IDEntry:      id,
		AutofillType: field.AutofillTypeText,
		HTML:         &field.HTMLInfo{Tag: "input", Attributes: map[string]string{"type": typ}},
	}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

func autocomplete(v string) attrOpt {
	return func(a *field.Attributes) { a.HTML.Attributes["autocomplete"] = v }
}

func origin(o string) attrOpt {
	return func(a *field.Attributes) { a.Origin = o }
}

func isFocused(a *field.Attributes) { a.Focused = true }

func handles(fields []*field.Descriptor) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Handle())
	}
	return out
}

func usernameHandle(sc scenario.Scenario) string {
	if u := sc.Username(); u != nil {
		return u.Handle()
	}
	return ""
}

type rejection struct {
	rule   string
	reason Reason
}

type recordingObserver struct {
	mu       sync.Mutex
	matched  []string
	rejected []rejection
	noMatch  int
}

func (o *recordingObserver) RuleMatched(rule string, _ OriginMode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.matched = append(o.matched, rule)
}

func (o *recordingObserver) RuleRejected(rule string, reason Reason) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rejected = append(o.rejected, rejection{rule: rule, reason: reason})
}

func (o *recordingObserver) NoMatch(OriginMode) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.noMatch++
}
