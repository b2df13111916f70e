package harvest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/fillguard/internal/field"
)

func fieldHandles(s *Screen) []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Handle())
	}
	return out
}

func TestLoad_AppLogin(t *testing.T) {
	s, err := Load("../../testdata/screens/app_login.yaml")
	require.NoError(t, err)

	assert.Equal(t, "com.example.bank", s.Package)
	assert.Nil(t, s.MultiOrigin)
	assert.Equal(t, []string{"username", "password"}, fieldHandles(s))
	assert.Equal(t, []string{"root", "title", "remember", "submit"}, s.Ignored)
	assert.Empty(t, s.WebOrigins)

	user, pass := s.Fields[0], s.Fields[1]
	assert.Equal(t, 0, user.Index())
	assert.Equal(t, 1, pass.Index())
	assert.Equal(t, field.Likely, user.UsernameCertainty())
	assert.Equal(t, field.Certain, pass.PasswordCertainty())
	assert.True(t, pass.Focused())
	assert.Equal(t, "hunter2", pass.Value())
}

func TestLoad_ChromeKeepsFieldOriginsEmpty(t *testing.T) {
	s, err := Load("../../testdata/screens/chrome_single_origin.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"url_bar", "email", "password"}, fieldHandles(s))
	assert.Equal(t, []string{"https://accounts.example.com"}, s.WebOrigins)

	urlBar := s.Fields[0]
	assert.True(t, urlBar.Excluded())
	assert.Equal(t, "https://accounts.example.com", urlBar.Origin())
	for _, f := range s.Fields[1:] {
		assert.Empty(t, f.Origin(), f.Handle())
	}
}

func TestLoad_JSONDocument(t *testing.T) {
	s, err := Load("../../testdata/screens/firefox_iframe.json")
	require.NoError(t, err)

	assert.Equal(t, "org.mozilla.firefox", s.Package)
	assert.Equal(t, []string{"login", "pass", "ad-pass"}, fieldHandles(s))
	assert.Equal(t, []string{"https://www.example.com", "https://ads.tracker.test"}, s.WebOrigins)
	assert.Equal(t, "https://ads.tracker.test", s.Fields[2].Origin())
}

func TestDecode_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "package: x\nwindows:\n  - id: a\n    colour: red\n",
		"duplicate id":       "windows:\n  - id: a\n    children:\n      - id: a\n",
		"empty document":     "",
		"malformed document": "windows: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestDecode_PositionalHandles(t *testing.T) {
	doc := `
package: com.example
multi_origin: false
windows:
  - class_name: android.widget.LinearLayout
    autofill_type: none
    children:
      - class_name: android.widget.EditText
        hint: user name
`
	s, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	require.NotNil(t, s.MultiOrigin)
	assert.False(t, *s.MultiOrigin)
	assert.Equal(t, []string{"node-1"}, fieldHandles(s))
	assert.Equal(t, []string{"node-0"}, s.Ignored)
}

func TestDecode_GeneratedHandlesAvoidDeclaredIDs(t *testing.T) {
	doc := `
windows:
  - class_name: android.widget.LinearLayout
    autofill_type: none
    children:
      - class_name: android.widget.EditText
        hint: user name
      - id: node-1
        class_name: android.widget.EditText
        input_type: textPassword
`
	s, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"node-1-2", "node-1"}, fieldHandles(s))
	assert.Equal(t, []string{"node-0"}, s.Ignored)
}

func TestDecode_DegradesUnknownMetadata(t *testing.T) {
	doc := `
windows:
  - id: a
    class_name: android.widget.EditText
    visibility: hidden
  - id: b
    class_name: android.widget.EditText
    autofill_type: password
  - id: c
    class_name: android.widget.EditText
    input_type: secret
    id_entry: password
`
	s, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, s.Ignored)
	require.Equal(t, []string{"c"}, fieldHandles(s))
	assert.Equal(t, field.InputType(0), s.Fields[0].InputType())
	assert.Equal(t, field.Impossible, s.Fields[0].PasswordCertainty())
	require.Len(t, s.Warnings, 3)
	assert.Contains(t, s.Warnings[0], "visibility")
	assert.Contains(t, s.Warnings[1], "autofill type")
	assert.Contains(t, s.Warnings[2], "secret")
}
