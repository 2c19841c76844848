package markdown

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoteHeadings_ShiftsToLevelFour(t *testing.T) {
	src := []byte("## What's Changed\n\n* Fix joins\n\n### Contributors\n\n```md\n## not a heading\n```\n")
	out, err := DemoteHeadings(src, 4)
	require.NoError(t, err)
	assert.Equal(t, "#### What's Changed\n\n* Fix joins\n\n##### Contributors\n\n```md\n## not a heading\n```\n", string(out))
}

func TestDemoteHeadings_CapsAtSix(t *testing.T) {
	out, err := DemoteHeadings([]byte("# A\n\n##### B\n"), 4)
	require.NoError(t, err)
	assert.Equal(t, "#### A\n\n###### B\n", string(out))
}

func TestDemoteHeadings_AlreadyDeep(t *testing.T) {
	src := []byte("#### A\n\n##### B\n")
	out, err := DemoteHeadings(src, 4)
	require.NoError(t, err)
	assert.Equal(t, src, out)

	plain := []byte("no headings here\n")
	out, err = DemoteHeadings(plain, 4)
	require.NoError(t, err)
	assert.Equal(t, plain, out)
}

func TestDemoteHeadings_Setext(t *testing.T) {
	out, err := DemoteHeadings([]byte("Highlights\n==========\n\nText\n"), 4)
	require.NoError(t, err)
	assert.Equal(t, "#### Highlights\n\nText\n", string(out))
}

func TestDemoteHeadings_InBlockquote(t *testing.T) {
	out, err := DemoteHeadings([]byte("> ## Note\n> body\n"), 4)
	require.NoError(t, err)
	assert.Equal(t, "> #### Note\n> body\n", string(out))
}

func TestRewriteOutsideCode(t *testing.T) {
	src := []byte("Use {x} with `{y}` here.\n\n```python\nd = {1: 2}\n```\n")
	re := regexp.MustCompile(`[{}]`)
	out := RewriteOutsideCode(src, func(b []byte) []byte {
		return re.ReplaceAllFunc(b, func(m []byte) []byte { return append([]byte(`\`), m...) })
	})
	assert.Equal(t, "Use \\{x\\} with `{y}` here.\n\n```python\nd = {1: 2}\n```\n", string(out))
}

func TestCodeRanges(t *testing.T) {
	src := []byte("a `b` c\n")
	ranges := CodeRanges(src)
	require.Len(t, ranges, 1)
	assert.Equal(t, "b", string(src[ranges[0].Start:ranges[0].End]))
	assert.Empty(t, CodeRanges([]byte("plain text")))
	assert.True(t, bytes.Equal([]byte("x"), RewriteOutsideCode([]byte("x"), func(b []byte) []byte { return b })))
}
