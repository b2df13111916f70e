// Package report renders the outcome of resolving one or more screens.
package report

import (
	"github.com/seitarof/fillguard/internal/scenario"
)

// Evaluation is the outcome for one screen.
type Evaluation struct {
	Name       string    `json:"name" yaml:"name"`
	Package    string    `json:"package,omitempty" yaml:"package,omitempty"`
	Mode       string    `json:"mode" yaml:"mode"`
	Manual     bool      `json:"manual,omitempty" yaml:"manual,omitempty"`
	Matched    bool      `json:"matched" yaml:"matched"`
	Rule       string    `json:"rule,omitempty" yaml:"rule,omitempty"`
	Scenario   *Scenario `json:"scenario,omitempty" yaml:"scenario,omitempty"`
	FormOrigin string    `json:"formOrigin,omitempty" yaml:"form_origin,omitempty"`
	Ignored    []string  `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	Error      string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Scenario lists the handles a resolved scenario touches.
type Scenario struct {
	Kind            string       `json:"kind" yaml:"kind"`
	Username        string       `json:"username,omitempty" yaml:"username,omitempty"`
	FillUsername    bool         `json:"fillUsername" yaml:"fill_username"`
	CurrentPassword []string     `json:"currentPassword,omitempty" yaml:"current_password,omitempty"`
	NewPassword     []string     `json:"newPassword,omitempty" yaml:"new_password,omitempty"`
	GenericPassword []string     `json:"genericPassword,omitempty" yaml:"generic_password,omitempty"`
	Fill            []ActionFill `json:"fill" yaml:"fill"`
	// Offered lists the actions presented to the user.
	Offered []string `json:"offered" yaml:"offered"`
	Save    []string `json:"save" yaml:"save"`
	// Savable is false when the entered values cannot be saved.
	Savable bool   `json:"savable" yaml:"savable"`
	State   string `json:"state" yaml:"state"`
}

// ActionFill is the set of handles filled for one action.
type ActionFill struct {
	Action  string   `json:"action" yaml:"action"`
	Handles []string `json:"handles" yaml:"handles"`
}

// FromScenario summarizes sc by handle. manual marks a fill the user
// requested explicitly.
func FromScenario(sc scenario.Scenario, manual bool) (*Scenario, error) {
	st := scenario.Encode(sc)
	blob, err := st.Marshal()
	if err != nil {
		return nil, err
	}
	out := &Scenario{
		Username:        st.UsernameID,
		FillUsername:    st.FillUsername,
		CurrentPassword: st.CurrentPasswordIDs,
		NewPassword:     st.NewPasswordIDs,
		GenericPassword: st.GenericPasswordIDs,
		Save:            handlesOf(scenario.FieldsToSave(sc)),
		State:           string(blob),
	}
	switch sc.(type) {
	case *scenario.Classified:
		out.Kind = "classified"
	case *scenario.Generic:
		out.Kind = "generic"
	}
	for _, a := range scenario.Actions() {
		out.Fill = append(out.Fill, ActionFill{
			Action:  a.String(),
			Handles: handlesOf(scenario.FieldsToFill(sc, a)),
		})
	}
	for _, a := range scenario.OfferedActions(sc, manual) {
		out.Offered = append(out.Offered, a.String())
	}
	_, out.Savable = scenario.SaveCredentials(sc)
	return out, nil
}

func handlesOf[T interface{ Handle() string }](fields []T) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, f.Handle())
	}
	return out
}
