package harvest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBundle(t *testing.T) {
	sources, skipped, err := LoadBundle("../../testdata/bundle.txtar")
	require.NoError(t, err)

	var names []string
	for _, s := range sources {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"app_login.yaml", "signup.html", "split_login.yaml", "search.yaml"}, names)
	assert.Equal(t, []string{"notes.md"}, skipped)
	assert.Equal(t, "document", sources[0].Kind.String())
	assert.Equal(t, KindHTML, sources[1].Kind)
	assert.Equal(t, "https://shop.example.co.uk", sources[1].Origin)

	for _, src := range sources {
		s, err := src.Harvest()
		require.NoError(t, err, src.Name)
		assert.Equal(t, src.Name, s.Name)
	}
}

func TestParseBundle_BadScreen(t *testing.T) {
	sources, skipped := ParseBundle([]byte("-- broken.yaml --\nwindows: [\n"))
	require.Len(t, sources, 1)
	assert.Empty(t, skipped)

	_, err := sources[0].Harvest()
	assert.ErrorContains(t, err, "broken.yaml")
}

func TestLoadBundle_Missing(t *testing.T) {
	_, _, err := LoadBundle("../../testdata/does-not-exist.txtar")
	assert.Error(t, err)
}
