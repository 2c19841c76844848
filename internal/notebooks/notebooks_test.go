package notebooks

import (
	"context"
	stdErrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
	"git.home.luguber.info/inful/pxtdocs/internal/toolexec"
)

func writeFile(t *testing.T, p, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
}

// newRepo lays out repo/docs/notebooks with two notebooks and a checkpoint.
func newRepo(t *testing.T) (root, nbDir string) {
	t.Helper()
	root = t.TempDir()
	nbDir = filepath.Join(root, "docs", "notebooks")
	writeFile(t, filepath.Join(nbDir, "pixeltable-basics.ipynb"), "{}")
	writeFile(t, filepath.Join(nbDir, "use-cases", "rag-demo.ipynb"), "{}")
	writeFile(t, filepath.Join(nbDir, ".ipynb_checkpoints", "rag-demo-checkpoint.ipynb"), "{}")
	return root, nbDir
}

// fakeQuarto writes pages into the output dir named by _quarto.yml.
func fakeQuarto(t *testing.T, pages map[string]string) *toolexec.FakeRunner {
	return &toolexec.FakeRunner{Handler: func(cmd toolexec.Command) (*toolexec.Result, error) {
		raw, err := os.ReadFile(filepath.Join(cmd.Dir, QuartoConfigFile))
		if err != nil {
			return nil, err
		}
		var cfg struct {
			Project struct {
				OutputDir string `yaml:"output-dir"`
			} `yaml:"project"`
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, err
		}
		for rel, body := range pages {
			writeFile(t, filepath.Join(cfg.Project.OutputDir, rel), body)
		}
		return &toolexec.Result{}, nil
	}}
}

func TestDiscover(t *testing.T) {
	_, nbDir := newRepo(t)
	got, err := Discover(nbDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"pixeltable-basics.ipynb", "use-cases/rag-demo.ipynb"}, got)

	_, err = Discover(filepath.Join(nbDir, "missing"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestConvert(t *testing.T) {
	root, nbDir := newRepo(t)
	out := filepath.Join(root, "docs", "target", "notebooks")
	writeFile(t, filepath.Join(out, "stale.mdx"), "old")

	runner := fakeQuarto(t, map[string]string{
		"pixeltable-basics.mdx":  "---\ntitle: Pixeltable Basics\nsidebar_position: 2\n---\n\n# Body\n",
		"use-cases/rag-demo.mdx": "---\ntitle: \"RAG Demo\"\n---\nText\n",
		"use-cases/orphan.mdx":   "---\ntitle: Orphan\n---\n",
		"use-cases/untitled.mdx": "no frontmatter here\n",
	})
	conv := NewConverter(runner, Options{Dir: nbDir, OutputDir: out}, nil)

	res, err := conv.Convert(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Notebooks)
	assert.Equal(t, 4, res.Pages)
	assert.Equal(t, 2, res.Enhanced)
	assert.ElementsMatch(t, []string{"use-cases/orphan.mdx", "use-cases/untitled.mdx"}, res.Skipped)

	require.Len(t, runner.Calls, 1)
	call := runner.Calls[0]
	assert.Equal(t, "quarto", call.Name)
	assert.Equal(t, []string{"render", "--to", "docusaurus-md"}, call.Args)
	assert.Equal(t, nbDir, call.Dir)
	assert.Equal(t, DefaultTimeout, call.Timeout)

	assert.NoFileExists(t, filepath.Join(nbDir, QuartoConfigFile))
	assert.NoFileExists(t, filepath.Join(out, "stale.mdx"))

	raw, err := os.ReadFile(filepath.Join(out, "use-cases", "rag-demo.mdx"))
	require.NoError(t, err)
	doc, err := frontmatter.Parse(raw)
	require.NoError(t, err)
	require.NotNil(t, doc.Fields)
	title, _ := doc.Fields.Get("title")
	icon, _ := doc.Fields.Get("icon")
	desc, _ := doc.Fields.Get("description")
	assert.Equal(t, "RAG Demo", title)
	assert.Equal(t, "notebook", icon)
	gh := "https://github.com/pixeltable/pixeltable/blob/release/docs/notebooks/use-cases/rag-demo.ipynb"
	assert.Equal(t, "[Open in Kaggle](https://kaggle.com/kernels/welcome?src="+gh+") | "+
		"[Open in Colab](https://colab.research.google.com/github.com/pixeltable/pixeltable/blob/release/docs/notebooks/use-cases/rag-demo.ipynb) | "+
		"[View on GitHub]("+gh+")", desc)
	assert.Equal(t, "Text\n", string(doc.Body))

	raw, err = os.ReadFile(filepath.Join(out, "pixeltable-basics.mdx"))
	require.NoError(t, err)
	doc, err = frontmatter.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "sidebar_position", "icon", "description"}, doc.Fields.Keys())
}

func TestConvert_QuartoFailureRemovesConfig(t *testing.T) {
	root, nbDir := newRepo(t)
	runner := &toolexec.FakeRunner{Handler: func(toolexec.Command) (*toolexec.Result, error) {
		return nil, errors.ToolError("command failed").Build()
	}}
	conv := NewConverter(runner, Options{Dir: nbDir, OutputDir: filepath.Join(root, "out")}, nil)

	_, err := conv.Convert(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTool))
	assert.NoFileExists(t, filepath.Join(nbDir, QuartoConfigFile))
}

func TestConvert_NoNotebooks(t *testing.T) {
	nbDir := filepath.Join(t.TempDir(), "docs", "notebooks")
	require.NoError(t, os.MkdirAll(nbDir, 0o750))
	runner := &toolexec.FakeRunner{}
	_, err := NewConverter(runner, Options{Dir: nbDir, OutputDir: t.TempDir()}, nil).Convert(context.Background())
	require.Error(t, err)
	assert.Empty(t, runner.Calls)
}

func TestEnhance(t *testing.T) {
	links := NotebookLinks("https://github.com/o/r/blob/release/", "docs/notebooks/a.ipynb")
	assert.Equal(t, "https://github.com/o/r/blob/release/docs/notebooks/a.ipynb", links.GitHub)
	assert.Equal(t, "https://colab.research.google.com/github.com/o/r/blob/release/docs/notebooks/a.ipynb", links.Colab)

	_, err := Enhance([]byte("# no fm\n"), links)
	assert.True(t, stdErrors.Is(err, ErrNoFrontmatter))

	_, err = Enhance([]byte("---\nsidebar: x\n---\nbody\n"), links)
	assert.True(t, stdErrors.Is(err, ErrNoTitle))

	out, err := Enhance([]byte("---\ntitle: A\n---\nbody\n"), links)
	require.NoError(t, err)
	assert.Contains(t, string(out), "icon: \"notebook\"\n")
	assert.Contains(t, string(out), "title: \"A\"\n")
}

func TestQuartoConfig(t *testing.T) {
	raw, err := QuartoConfig("/abs/out")
	require.NoError(t, err)
	var cfg map[string]any
	require.NoError(t, yaml.Unmarshal(raw, &cfg))
	project := cfg["project"].(map[string]any)
	assert.Equal(t, "/abs/out", project["output-dir"])
	format := cfg["format"].(map[string]any)["docusaurus-md"].(map[string]any)
	assert.Equal(t, "mdx", format["output-ext"])
	assert.Equal(t, 300, format["fig-dpi"])
	assert.Equal(t, []any{".", "images/", "../images/"}, format["resource-path"])
}
