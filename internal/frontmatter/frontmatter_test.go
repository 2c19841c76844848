package frontmatter

import (
	"errors"
	"testing"

	"github.com/inful/mdfp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NoFrontmatter(t *testing.T) {
	input := []byte("# Title\n\nHello\n")
	doc, err := Parse(input)
	require.NoError(t, err)
	assert.Nil(t, doc.Fields)
	assert.Equal(t, input, doc.Body)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, input, out)
}

func TestParse_SplitsFieldsAndBody(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: Tables\nsidebar: 3\n---\n# Title\n"))
	require.NoError(t, err)
	require.NotNil(t, doc.Fields)

	title, ok := doc.Fields.Get("title")
	require.True(t, ok)
	assert.Equal(t, "Tables", title)
	assert.Equal(t, []string{"title", "sidebar"}, doc.Fields.Keys())
	assert.Equal(t, []byte("# Title\n"), doc.Body)
}

func TestParse_MissingClosingDelimiter(t *testing.T) {
	_, err := Parse([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParse_EmptyBlock(t *testing.T) {
	doc, err := Parse([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.NotNil(t, doc.Fields)
	assert.Empty(t, doc.Fields.Keys())
	assert.Equal(t, []byte("# Title\n"), doc.Body)
}

func TestParse_RejectsNonMapping(t *testing.T) {
	_, err := Parse([]byte("---\n- a\n- b\n---\nbody\n"))
	require.Error(t, err)
}

func TestSetPreservesOrderAndQuotes(t *testing.T) {
	doc, err := Parse([]byte("---\ntitle: \"Working with \\\"UDFs\\\"\"\nauthor: me\n---\nBody\n"))
	require.NoError(t, err)

	doc.Fields.Set("title", "Working with UDFs")
	doc.Fields.Set("icon", "notebook")
	doc.Fields.Delete("author")

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: \"Working with UDFs\"\nicon: \"notebook\"\n---\nBody\n", string(out))
}

func TestBytes_KeepsCRLF(t *testing.T) {
	doc, err := Parse([]byte("---\r\ntitle: A\r\n---\r\nBody\r\n"))
	require.NoError(t, err)
	doc.Fields.Set("icon", "book")

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, "---\r\ntitle: A\r\nicon: \"book\"\r\n---\r\nBody\r\n", string(out))
}

func TestRender_LongValuesStayOnOneLine(t *testing.T) {
	desc := "[Open in Kaggle](https://kaggle.com/kernels/welcome?src=https://github.com/pixeltable/pixeltable/blob/release/docs/notebooks/a.ipynb) | [View on GitHub](https://github.com/pixeltable/pixeltable/blob/release/docs/notebooks/a.ipynb)"
	out, err := Render(NewFields("title", "A", "description", desc), []byte("\nBody\n"))
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: \"A\"\ndescription: \""+desc+"\"\n---\n\nBody\n", string(out))
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint([]byte("---\ntitle: \"A\"\n---\nBody\n"))
	require.NoError(t, err)
	crlf, err := Fingerprint([]byte("---\r\ntitle: \"A\"\r\n---\r\nBody\r\n"))
	require.NoError(t, err)
	assert.Equal(t, a, crlf)

	withFP, err := Fingerprint([]byte("---\ntitle: \"A\"\n" + mdfp.FingerprintField + ": abc\n---\nBody\n"))
	require.NoError(t, err)
	assert.Equal(t, a, withFP)

	changed, err := Fingerprint([]byte("---\ntitle: \"A\"\n---\nOther body\n"))
	require.NoError(t, err)
	assert.NotEqual(t, a, changed)
}
