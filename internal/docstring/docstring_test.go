package docstring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resizeDoc = `Resize an image to the given size.

    Uses the underlying PIL implementation. Braces like {x} are
    passed through untouched here.

    Args:
        image (Image): The image to resize.
        size (tuple[int, int]): Target width and height.
            Must be positive.

            Larger sizes upscale.
        resample (int, optional): Resampling filter. Defaults to 3.

    Returns:
        Image: The resized image.

    Raises:
        ValueError: If the size is not positive.

    Examples:
        Resize a column:

        >>> tbl.select(tbl.img.resize((224, 224))).collect()
    `

func TestParse_GoogleSections(t *testing.T) {
	d := Parse(resizeDoc)

	assert.Equal(t, "Resize an image to the given size.", d.Summary)
	assert.Equal(t, "Resize an image to the given size.\n\nUses the underlying PIL implementation. Braces like {x} are\npassed through untouched here.", d.Description)

	require.Len(t, d.Params, 3)
	assert.Equal(t, Param{Name: "image", Type: "Image", Description: "The image to resize."}, d.Params[0])
	assert.Equal(t, "tuple[int, int]", d.Params[1].Type)
	assert.Equal(t, "Target width and height.\nMust be positive.\n\nLarger sizes upscale.", d.Params[1].Description)
	assert.Equal(t, Param{Name: "resample", Type: "int", Optional: true, Default: "3", Description: "Resampling filter. Defaults to 3."}, d.Params[2])

	require.NotNil(t, d.Returns)
	assert.Equal(t, "Image", d.Returns.Type)
	assert.Equal(t, "The resized image.", d.Returns.Description)
	assert.False(t, d.Returns.Yields)

	assert.Equal(t, []Raises{{Type: "ValueError", Description: "If the size is not positive."}}, d.Raises)
	assert.Equal(t, "Resize a column:\n\n>>> tbl.select(tbl.img.resize((224, 224))).collect()", d.Examples)
}

func TestParse_FreeTextReturnsAndYields(t *testing.T) {
	d := Parse("Stream rows.\n\nYields:\n    One dict per row of the result set.\n")
	require.NotNil(t, d.Returns)
	assert.True(t, d.Returns.Yields)
	assert.Empty(t, d.Returns.Type)
	assert.Equal(t, "One dict per row of the result set.", d.Returns.Description)

	d = Parse("Get.\n\nReturns:\n    dict[str, Any] | None: The row, if any.")
	assert.Equal(t, "dict[str, Any] | None", d.Returns.Type)
}

func TestParse_NoSections(t *testing.T) {
	d := Parse("  Just a one-liner.  ")
	assert.Equal(t, "Just a one-liner.", d.Description)
	assert.Nil(t, d.Returns)
	assert.Empty(t, d.Params)
	assert.Empty(t, Parse("").Description)
}

func TestParse_StarArgs(t *testing.T) {
	d := Parse("F.\n\nArgs:\n    *args: Positional values.\n    **kwargs (Any): Extra options.\n")
	require.Len(t, d.Params, 2)
	assert.Equal(t, "args", d.Params[0].Name)
	assert.Equal(t, "kwargs", d.Params[1].Name)
	assert.Equal(t, "Any", d.Params[1].Type)
}

func TestClean(t *testing.T) {
	assert.Equal(t, "First.\n\n  indented\nflush", Clean("First.\n\n      indented\n    flush\n    "))
}

func TestExtractExamples(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Example
	}{
		{
			name: "single",
			text: "Create a table:\n\n>>> t = pxt.create_table('films', {'title': pxt.String})",
			want: []Example{{Description: "Create a table:", Code: "t = pxt.create_table('films', {'title': pxt.String})"}},
		},
		{
			name: "blank then prompt continues",
			text: ">>> t = pxt.get_table('films')\n\n>>> t.count()",
			want: []Example{{Code: "t = pxt.get_table('films')\nt.count()"}},
		},
		{
			name: "continuation lines",
			text: ">>> t.add_computed_column(\n...     rot=t.img.rotate(90)\n... )",
			want: []Example{{Code: "t.add_computed_column(\n    rot=t.img.rotate(90)\n)"}},
		},
		{
			name: "prose ends example",
			text: "First:\n>>> a()\n\nSecond, with\nmore words:\n>>> b()\n",
			want: []Example{
				{Description: "First:", Code: "a()"},
				{Description: "Second, with more words:", Code: "b()"},
			},
		},
		{
			name: "output captured",
			text: ">>> t.count()\n42\n\n>>> t.head()",
			want: []Example{
				{Code: "t.count()", Output: "42"},
				{Code: "t.head()"},
			},
		},
		{
			name: "output then prompt starts new example",
			text: ">>> x\n1\n2\n>>> y",
			want: []Example{
				{Code: "x", Output: "1\n2"},
				{Code: "y"},
			},
		},
		{
			name: "double blank ends",
			text: ">>> a()\n\n\nTrailing note.",
			want: []Example{{Code: "a()"}, {Description: "Trailing note."}},
		},
		{
			name: "empty",
			text: "\n\n",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractExamples(tt.text))
		})
	}
}
