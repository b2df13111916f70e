package origin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitarof/fillguard/internal/field"
	"github.com/seitarof/fillguard/internal/scenario"
)

func TestWebOrigin(t *testing.T) {
	assert.Equal(t, "http://example.com", WebOrigin("", "example.com"))
	assert.Equal(t, "https://example.com", WebOrigin("HTTPS", "example.com"))
	assert.Equal(t, "", WebOrigin("https", " "))
}

func TestFromWebOrigin(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://accounts.example.co.uk", "example.co.uk"},
		{"http://login.example.com:8080", "example.com"},
		{"https://example.com", "example.com"},
		{"https://192.168.1.10", "192.168.1.10"},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := FromWebOrigin(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, Web(tt.want), got)
		})
	}

	_, err := FromWebOrigin("ftp://example.com")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
	_, err = FromWebOrigin("https://")
	assert.ErrorIs(t, err, ErrNoHost)
	_, err = FromWebOrigin("https://co.uk")
	assert.Error(t, err, "a bare public suffix has no registrable domain")
}

func TestFormOrigin_Pretty(t *testing.T) {
	assert.Equal(t, "“com.example.app”", App("com.example.app").Pretty(true))
	assert.Equal(t, "com.example.app", App("com.example.app").Pretty(false))
	assert.Equal(t, "example.com", Web("example.com").Pretty(true))
	assert.Equal(t, "web:example.com", Web("example.com").String())
}

func TestDetermine(t *testing.T) {
	mk := func(origins ...string) scenario.Scenario {
		attrs := make([]field.Attributes, len(origins))
		for i, o := range origins {
			attrs[i] = field.Attributes{Handle: string(rune('a' + i)), Origin: o}
		}
		fields := field.NewList(attrs)
		sc, err := (&scenario.Builder{Username: fields[0], GenericPassword: fields[1:]}).Build()
		require.NoError(t, err)
		return sc
	}

	got, ok := Determine("com.example.app", false, []string{"https://example.com"}, nil)
	require.True(t, ok)
	assert.Equal(t, App("com.example.app"), got)

	got, ok = Determine("org.mozilla.firefox", true, nil, nil)
	require.True(t, ok)
	assert.Equal(t, App("org.mozilla.firefox"), got)

	got, ok = Determine("org.mozilla.firefox", true, []string{"https://www.example.com"}, nil)
	require.True(t, ok)
	assert.Equal(t, Web("example.com"), got)

	multi := []string{"https://www.example.com", "https://ads.tracker.net"}
	got, ok = Determine("org.mozilla.firefox", true, multi, mk("https://www.example.com", "https://login.example.com"))
	assert.False(t, ok, "distinct origins among the fields to save")

	got, ok = Determine("org.mozilla.firefox", true, multi, mk("https://www.example.com", "https://www.example.com"))
	require.True(t, ok)
	assert.Equal(t, Web("example.com"), got)

	_, ok = Determine("org.mozilla.firefox", true, multi, mk("", ""))
	assert.False(t, ok)

	_, ok = Determine("org.mozilla.firefox", true, []string{"ftp://example.com"}, nil)
	assert.False(t, ok)
}
