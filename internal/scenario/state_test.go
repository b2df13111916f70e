package scenario

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/seitarof/fillguard/internal/field"
)

// roles flattens a scenario into a comparable role -> handles view.
func roles(sc Scenario) map[string][]string {
	out := map[string][]string{}
	if u := sc.Username(); u != nil {
		out["username"] = []string{u.Handle()}
	}
	out["fillUsername"] = []string{fmt.Sprint(sc.FillUsername())}
	switch s := sc.(type) {
	case *Classified:
		out["current"] = handlesOf(s.currentPassword)
		out["new"] = handlesOf(s.newPassword)
	case *Generic:
		out["generic"] = handlesOf(s.genericPassword)
	}
	return out
}

func TestState_RoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		fields := screen(rapid.IntRange(1, 8).Draw(rt, "n"))
		pick := func(label string) []*field.Descriptor {
			var out []*field.Descriptor
			for i, f := range fields {
				if rapid.Bool().Draw(rt, fmt.Sprintf("%s_%d", label, i)) {
					out = append(out, f)
				}
			}
			return out
		}

		b := Builder{FillUsername: rapid.Bool().Draw(rt, "fillUsername")}
		if rapid.Bool().Draw(rt, "hasUsername") {
			b.Username = rapid.SampledFrom(fields).Draw(rt, "username")
		}
		if rapid.Bool().Draw(rt, "classified") {
			b.CurrentPassword = pick("current")
			b.NewPassword = pick("new")
		} else {
			b.GenericPassword = pick("generic")
		}
		sc, err := b.Build()
		if err != nil {
			rt.Fatalf("Build() error = %v", err)
		}

		blob, err := Encode(sc).Marshal()
		if err != nil {
			rt.Fatalf("Marshal() error = %v", err)
		}
		st, err := UnmarshalState(blob)
		if err != nil {
			rt.Fatalf("UnmarshalState() error = %v", err)
		}
		recovered, err := st.Recover(fields)
		if err != nil {
			rt.Fatalf("Recover() error = %v", err)
		}
		if diff := cmp.Diff(roles(sc), roles(recovered)); diff != "" {
			rt.Fatalf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestState_Keys(t *testing.T) {
	f := screen(3)
	sc := mustBuild(t, Builder{Username: f[0], FillUsername: true, CurrentPassword: f[1:2], NewPassword: f[2:3]})

	blob, err := Encode(sc).Marshal()
	require.NoError(t, err)
	assert.JSONEq(t, `{"usernameId":"f0","fillUsername":true,"currentPasswordIds":["f1"],"newPasswordIds":["f2"]}`, string(blob))
}

func TestState_RecoverErrors(t *testing.T) {
	f := screen(2)

	_, err := State{GenericPasswordIDs: []string{"gone"}}.Recover(f)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	_, err = State{UsernameID: "gone"}.Recover(f)
	assert.ErrorIs(t, err, ErrUnknownHandle)

	_, err = State{CurrentPasswordIDs: []string{"f0"}, GenericPasswordIDs: []string{"f1"}}.Recover(f)
	assert.ErrorIs(t, err, ErrMalformedState)
	assert.ErrorIs(t, err, ErrMixedScenario)

	_, err = UnmarshalState([]byte("{"))
	assert.ErrorIs(t, err, ErrMalformedState)
}

func TestState_RecoverRejectsAmbiguousHandles(t *testing.T) {
	f := field.NewList([]field.Attributes{
		{Handle: "pw", ClassName: "android.widget.EditText", AutofillType: field.AutofillTypeText, InputType: field.InputTypeClassText | field.TextVariationPassword},
		{Handle: "login", ClassName: "android.widget.EditText", AutofillType: field.AutofillTypeText, InputType: field.InputTypeClassText},
		{Handle: "pw", ClassName: "android.widget.EditText", AutofillType: field.AutofillTypeText, InputType: field.InputTypeClassText},
	})
	sc := mustBuild(t, Builder{CurrentPassword: f[:1]})

	_, err := Encode(sc).Recover(f)
	assert.ErrorIs(t, err, ErrMalformedState)
}
