package scenario

import (
	"fmt"
	"strings"

	"github.com/seitarof/fillguard/internal/field"
)

// Action is the user-facing operation a fill is performed for.
type Action int

const (
	// ActionMatch fills a credential matched to the form origin.
	ActionMatch Action = iota
	// ActionSearch fills a credential the user searched for.
	ActionSearch
	// ActionGenerate fills a freshly generated password.
	ActionGenerate
)

var actionNames = []string{"match", "search", "generate"}

func (a Action) String() string {
	if int(a) < 0 || int(a) >= len(actionNames) {
		return "unknown"
	}
	return actionNames[a]
}

// ParseAction parses the lower case action name.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if strings.EqualFold(s, name) {
			return Action(i), nil
		}
	}
	return 0, fmt.Errorf("unknown action %q", s)
}

// Actions lists every action in declaration order.
func Actions() []Action {
	return []Action{ActionMatch, ActionSearch, ActionGenerate}
}

// FieldsToFill returns the fields that receive a value for action.
// A generic scenario with several password fields is only filled for
// ActionGenerate.
func FieldsToFill(sc Scenario, action Action) []*field.Descriptor {
	var out []*field.Descriptor
	if u := sc.Username(); u != nil && sc.FillUsername() {
		out = append(out, u)
	}
	switch s := sc.(type) {
	case *Classified:
		if action == ActionGenerate {
			return append(out, s.newPassword...)
		}
		return append(out, s.currentPassword...)
	case *Generic:
		if action == ActionGenerate || len(s.genericPassword) == 1 {
			return append(out, s.genericPassword...)
		}
		return out
	default:
		panic(unknownVariant(sc))
	}
}

// PasswordFieldsToSave returns the password fields whose value is saved.
// A new password wins over the current one.
func PasswordFieldsToSave(sc Scenario) []*field.Descriptor {
	switch s := sc.(type) {
	case *Classified:
		if len(s.newPassword) > 0 {
			return s.NewPassword()
		}
		return s.CurrentPassword()
	case *Generic:
		return s.GenericPassword()
	default:
		panic(unknownVariant(sc))
	}
}

// FieldsToSave returns the username field, if any, and the password fields
// to save. fillUsername does not apply here.
func FieldsToSave(sc Scenario) []*field.Descriptor {
	return withUsername(sc.Username(), PasswordFieldsToSave(sc))
}

// OfferedActions lists the actions offered to the user for sc. A manual
// request is offered everything. Otherwise one password field offers match
// and search, and two password fields offer generate.
func OfferedActions(sc Scenario, manual bool) []Action {
	if manual {
		return Actions()
	}
	passwords := len(sc.AllFields())
	if sc.Username() != nil {
		passwords--
	}
	switch passwords {
	case 1:
		return []Action{ActionMatch, ActionSearch}
	case 2:
		return []Action{ActionGenerate}
	default:
		return nil
	}
}
