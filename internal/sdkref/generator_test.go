package sdkref

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pxtdocs/internal/manifest"
	"git.home.luguber.info/inful/pxtdocs/internal/pysource"
)

var sourceTree = map[string]string{
	"pixeltable/__init__.py": `"""Pixeltable SDK."""
from .globals import *
from .catalog import Table, Catalog

__all__ = ['create_table', 'Table']
`,
	"pixeltable/globals.py": `def create_table(path: str, *, comment: str = '') -> 'Table':
    """Create a table.

    Args:
        path: Where the table lives.
    """
`,
	"pixeltable/catalog/__init__.py": `from .table import Table

class Catalog:
    pass
`,
	"pixeltable/catalog/table.py": `class Table(SchemaObject):
    """A handle to a {stored} table."""

    def insert(self, rows: list[dict]) -> None:
        """Insert rows."""

    def _validate(self):
        pass

    @property
    def name(self) -> str:
        return self._name
`,
	"pixeltable/functions/__init__.py": ``,
	"pixeltable/functions/image.py": `"""Image functions."""
import pixeltable as pxt
from PIL import Image

@pxt.udf(is_method=True)
def resize(self: Image.Image, size: tuple[int, int]) -> Image.Image:
    """Resize the image."""

def helper(x):
    pass
`,
}

const testOutline = `<?xml version="1.0" encoding="UTF-8"?>
<opml version="2.0">
  <head><title>Pixeltable Public API</title></head>
  <body>
    <outline text="Core">
      <outline text="module|pixeltable">
        <outline text="func|pixeltable.create_table"/>
        <outline text="class|pixeltable.Table"/>
      </outline>
    </outline>
    <outline text="module|pixeltable.functions.image">
      <outline text="udf|pixeltable.functions.image.resize"/>
    </outline>
    <outline text="func|pixeltable.missing"/>
    <outline text="class|pixeltable.Catalog"/>
  </body>
</opml>
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestGenerator(t *testing.T, showErrors bool) (*Generator, string) {
	t.Helper()
	root := writeTree(t, sourceTree)
	opmlPath := filepath.Join(t.TempDir(), "public_api.opml")
	require.NoError(t, os.WriteFile(opmlPath, []byte(testOutline), 0o644))

	out := filepath.Join(t.TempDir(), "sdk", "latest")
	g, err := NewGenerator(Options{
		OPMLPath:   opmlPath,
		SourceRoot: root,
		OutputDir:  out,
		GitHubRepo: "pixeltable/pixeltable",
		ShowErrors: showErrors,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return g, out
}

func TestGenerate(t *testing.T) {
	g, out := newTestGenerator(t, true)
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(out, "stale.mdx"), []byte("old"), 0o644))

	res, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, manifest.DefaultSDKTab, res.Tab.Name)
	require.Len(t, res.Tab.Dropdowns, 1)
	dd := res.Tab.Dropdowns[0]
	assert.Equal(t, "latest", dd.Key)
	assert.Equal(t, "book", dd.Icon)

	require.Len(t, dd.Groups, 1)
	assert.Equal(t, "Core", dd.Groups[0].Name)
	require.Len(t, dd.Groups[0].Pages, 1)
	core, ok := dd.Groups[0].Pages[0].(*manifest.Group)
	require.True(t, ok)
	assert.Equal(t, "pixeltable", core.Name)
	assert.Equal(t, []manifest.Node{
		manifest.PageRef("sdk/latest/pixeltable"),
		manifest.PageRef("sdk/latest/pixeltable-table"),
	}, core.Pages)

	assert.Equal(t, []manifest.Node{
		manifest.PageRef("sdk/latest/pixeltable-functions-image"),
		manifest.PageRef("sdk/latest/pixeltable-missing"),
	}, dd.Pages)
	assert.Equal(t, []string{"pixeltable.missing"}, res.Unresolved)
	assert.Len(t, res.Pages, 4)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"pixeltable.mdx", "pixeltable-table.mdx", "pixeltable-functions-image.mdx", "pixeltable-missing.mdx",
	}, names)

	read := func(name string) string {
		b, err := os.ReadFile(filepath.Join(out, name))
		require.NoError(t, err)
		return string(b)
	}

	mod := read("pixeltable.mdx")
	assert.Contains(t, mod, `title: "pixeltable"`)
	assert.Contains(t, mod, "blob/main/pixeltable/__init__.py#L0")
	assert.Contains(t, mod, "## `func` create_table()")
	assert.Contains(t, mod, "- **`path`** (`str`): Where the table lives.")

	tbl := read("pixeltable-table.mdx")
	assert.Contains(t, tbl, "blob/main/pixeltable/catalog/table.py#L1")
	assert.Contains(t, tbl, "```python\nclass Table(SchemaObject)\n```")
	assert.Contains(t, tbl, "A handle to a \\{stored\\} table.")
	assert.Contains(t, tbl, "## `method` insert()")
	assert.NotContains(t, tbl, "_validate")
	assert.NotContains(t, tbl, "name()")

	img := read("pixeltable-functions-image.mdx")
	assert.Contains(t, img, "## `udf` resize()")
	assert.NotContains(t, img, "helper")

	assert.Contains(t, read("pixeltable-missing.mdx"), "## ⚠️ Function not found")
}

func TestGenerate_HidesErrors(t *testing.T) {
	g, out := newTestGenerator(t, false)
	res, err := g.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []manifest.Node{manifest.PageRef("sdk/latest/pixeltable-functions-image")}, res.Tab.Dropdowns[0].Pages)
	assert.Equal(t, []string{"pixeltable.missing"}, res.Unresolved)
	assert.NoFileExists(t, filepath.Join(out, "pixeltable-missing.mdx"))
}

func TestGenerate_MissingOutline(t *testing.T) {
	g, err := NewGenerator(Options{OPMLPath: filepath.Join(t.TempDir(), "nope.opml"), SourceRoot: t.TempDir(), OutputDir: t.TempDir()}, nil)
	require.NoError(t, err)
	_, err = g.Generate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "public API outline")
}

func TestOPML(t *testing.T) {
	doc, err := ParseOPML(strings.NewReader(testOutline))
	require.NoError(t, err)
	assert.Equal(t, "Pixeltable Public API", doc.Title)
	require.Len(t, doc.Outlines, 4)

	_, _, ok := doc.Outlines[0].Item()
	assert.False(t, ok)
	typ, path, ok := doc.Outlines[2].Item()
	assert.True(t, ok)
	assert.Equal(t, "func", typ)
	assert.Equal(t, "pixeltable.missing", path)

	var count int
	doc.Walk(func(*Outline) { count++ })
	assert.Equal(t, 8, count)

	documented := doc.Documented()
	assert.Equal(t, []APIItem{{Type: "func", Name: "create_table"}, {Type: "class", Name: "Table"}}, documented["pixeltable"])
	assert.Equal(t, []APIItem{}, documented["pixeltable.Table"])
	assert.Equal(t, []APIItem{{Type: "udf", Name: "resize"}}, documented["pixeltable.functions.image"])
	assert.NotContains(t, documented, "Core")

	_, err = ParseOPML(strings.NewReader("<opml><body>"))
	assert.Error(t, err)
}

func TestScanAPI(t *testing.T) {
	ix, err := pysource.NewIndex(writeTree(t, sourceTree), 0)
	require.NoError(t, err)

	scanned, skipped, err := ScanAPI(context.Background(), ix, "pixeltable", []string{"functions.image", "functions.nope"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pixeltable.functions.nope"}, skipped)

	assert.Equal(t, []APIItem{{Type: "func", Name: "create_table"}, {Type: "class", Name: "Table"}}, scanned["pixeltable"])
	assert.Equal(t, []APIItem{{Type: "method", Name: "insert"}, {Type: "property", Name: "name"}}, scanned["pixeltable.Table"])
	assert.Equal(t, []APIItem{{Type: "udf", Name: "resize"}, {Type: "func", Name: "helper"}}, scanned["pixeltable.functions.image"])
}

func TestCompareAPI(t *testing.T) {
	scanned := map[string][]APIItem{
		"pixeltable":                 {{"func", "create_table"}, {"class", "Table"}},
		"pixeltable.Table":           {{"method", "insert"}, {"property", "name"}},
		"pixeltable.functions.image": {{"udf", "resize"}, {"func", "helper"}},
	}
	documented := map[string][]APIItem{
		"pixeltable":                 {{"func", "create_table"}, {"class", "Table"}, {"func", "drop_table"}},
		"pixeltable.Table":           {},
		"pixeltable.functions.image": {{"udf", "resize"}},
		"pixeltable.io":              {{"func", "import_csv"}},
	}

	r := CompareAPI(scanned, documented)
	assert.Equal(t, []string{
		"pixeltable.Table.insert (method)",
		"pixeltable.Table.name (property)",
		"pixeltable.functions.image.helper (func)",
	}, r.MissingFromOPML)
	assert.Equal(t, []string{
		"pixeltable.drop_table (func)",
		"pixeltable.io.import_csv (func) - module not found",
	}, r.NotInCode)
	assert.Equal(t, []string{"pixeltable.Table (has 2 items in code)"}, r.EmptyModules)
	assert.True(t, r.Failed())

	clean := CompareAPI(map[string][]APIItem{"pixeltable": {{"func", "create_table"}}},
		map[string][]APIItem{"pixeltable": {{"func", "create_table"}, {"func", "gone"}}})
	assert.False(t, clean.Failed())
	assert.Equal(t, []string{"pixeltable.gone (func)"}, clean.NotInCode)
}

func TestCheckAPI(t *testing.T) {
	ix, err := pysource.NewIndex(writeTree(t, sourceTree), 0)
	require.NoError(t, err)
	doc, err := ParseOPML(strings.NewReader(testOutline))
	require.NoError(t, err)

	r, err := CheckAPI(context.Background(), ix, doc, "pixeltable", []string{"functions.image"})
	require.NoError(t, err)
	assert.Empty(t, r.Skipped)
	assert.Subset(t, r.MissingFromOPML, []string{
		"pixeltable.Table.insert (method)",
		"pixeltable.Table.name (property)",
		"pixeltable.functions.image.helper (func)",
	})
	assert.Equal(t, []string{"pixeltable.Table (has 2 items in code)"}, r.EmptyModules)
	assert.True(t, r.Failed())
}
