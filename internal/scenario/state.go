package scenario

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seitarof/fillguard/internal/field"
)

var (
	// ErrUnknownHandle means a saved handle is not present on the screen.
	ErrUnknownHandle = errors.New("scenario: handle not found")
	// ErrMalformedState means a state blob could not be decoded.
	ErrMalformedState = errors.New("scenario: malformed state")
)

// State is the flat record a scenario is carried in between the fill
// offer and the actual fill. It references fields by handle only.
type State struct {
	UsernameID         string   `json:"usernameId,omitempty"`
	FillUsername       bool     `json:"fillUsername"`
	CurrentPasswordIDs []string `json:"currentPasswordIds,omitempty"`
	NewPasswordIDs     []string `json:"newPasswordIds,omitempty"`
	GenericPasswordIDs []string `json:"genericPasswordIds,omitempty"`
}

// Encode captures sc as a State.
func Encode(sc Scenario) State {
	st := State{FillUsername: sc.FillUsername()}
	if u := sc.Username(); u != nil {
		st.UsernameID = u.Handle()
	}
	switch s := sc.(type) {
	case *Classified:
		st.CurrentPasswordIDs = handles(s.currentPassword)
		st.NewPasswordIDs = handles(s.newPassword)
	case *Generic:
		st.GenericPasswordIDs = handles(s.genericPassword)
	default:
		panic(unknownVariant(sc))
	}
	return st
}

// Marshal returns the opaque blob form of the state.
func (st State) Marshal() ([]byte, error) {
	return json.Marshal(st)
}

// UnmarshalState decodes a blob produced by State.Marshal.
func UnmarshalState(blob []byte) (State, error) {
	var st State
	if err := json.Unmarshal(blob, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	return st, nil
}

// Recover resolves the handles in st against fields. Every handle must be
// present, and handles must identify fields unambiguously.
func (st State) Recover(fields []*field.Descriptor) (Scenario, error) {
	byHandle := make(map[string]*field.Descriptor, len(fields))
	for _, f := range fields {
		if _, dup := byHandle[f.Handle()]; dup {
			return nil, fmt.Errorf("%w: handle %q names several fields", ErrMalformedState, f.Handle())
		}
		byHandle[f.Handle()] = f
	}
	lookup := func(ids []string) ([]*field.Descriptor, error) {
		out := make([]*field.Descriptor, 0, len(ids))
		for _, id := range ids {
			f, ok := byHandle[id]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownHandle, id)
			}
			out = append(out, f)
		}
		return out, nil
	}

	b := Builder{FillUsername: st.FillUsername}
	if st.UsernameID != "" {
		u, err := lookup([]string{st.UsernameID})
		if err != nil {
			return nil, err
		}
		b.Username = u[0]
	}
	var err error
	if b.CurrentPassword, err = lookup(st.CurrentPasswordIDs); err != nil {
		return nil, err
	}
	if b.NewPassword, err = lookup(st.NewPasswordIDs); err != nil {
		return nil, err
	}
	if b.GenericPassword, err = lookup(st.GenericPasswordIDs); err != nil {
		return nil, err
	}
	sc, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	return sc, nil
}

func handles(fields []*field.Descriptor) []string {
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Handle()
	}
	return out
}
