package translate

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLooksLikeHTML(t *testing.T) {
	require.True(t, looksLikeHTML("<b>bold</b>"))
	require.False(t, looksLikeHTML("a < b"))
	require.False(t, looksLikeHTML("plain text"))
}

func TestHTMLFragmentDeduplicatesSegments(t *testing.T) {
	fragment, err := parseHTMLFragment(`<ul><li>Yes</li><li>No</li><li>Yes</li></ul><code>Yes</code>`)
	require.NoError(t, err)
	require.Equal(t, []string{"Yes", "No"}, fragment.texts())

	out, err := fragment.render(map[string]string{"Yes": "Oui", "No": "Non"})
	require.NoError(t, err)
	require.Equal(t, `<ul><li>Oui</li><li>Non</li><li>Oui</li></ul><code>Yes</code>`, out)
}

func TestHTMLFragmentHasMarkup(t *testing.T) {
	plain, err := parseHTMLFragment("Is 2 < 3 and 5 > 4?")
	require.NoError(t, err)
	require.False(t, plain.hasMarkup())

	rich, err := parseHTMLFragment("Press <kbd>Enter</kbd>")
	require.NoError(t, err)
	require.True(t, rich.hasMarkup())
}

func TestHTMLFragmentSkipsTranslateNo(t *testing.T) {
	fragment, err := parseHTMLFragment(`<p>Use <span translate="no">Polyglot</span> daily</p>`)
	require.NoError(t, err)
	require.Equal(t, []string{"Use", "daily"}, fragment.texts())
}

func TestPreserveWhitespace(t *testing.T) {
	require.Equal(t, "  Bonjour\n", preserveWhitespace("  Hello\n", "Bonjour"))
	require.Equal(t, "Salut", preserveWhitespace("Hi", " Salut "))
}
