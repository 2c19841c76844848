package content

import (
	"context"
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pxtdocs/internal/forge"
	"git.home.luguber.info/inful/pxtdocs/internal/frontmatter"
)

const repo = "pixeltable/pixeltable"

func published(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

var releases = []forge.Release{
	{
		TagName:     "v0.4.16",
		Name:        "v0.4.16",
		HTMLURL:     "https://github.com/pixeltable/pixeltable/releases/tag/v0.4.16",
		PublishedAt: published("2025-09-03T18:20:00Z"),
		Author:      forge.User{Login: "aaron-siegel"},
		Body: "## What's Changed\n" +
			"* Fix joins by @marcel in https://github.com/pixeltable/pixeltable/pull/289\n" +
			"* Already linked [#290](https://github.com/pixeltable/pixeltable/pull/290)\n\n" +
			"```\n## not a heading https://github.com/pixeltable/pixeltable/pull/1\n```\n\n" +
			"### Details\n",
	},
	{TagName: "v0.4.15"},
}

func TestRenderChangelog(t *testing.T) {
	out, err := RenderChangelog(releases, ChangelogOptions{Repo: repo})
	require.NoError(t, err)

	doc, err := frontmatter.Parse(out)
	require.NoError(t, err)
	title, _ := doc.Fields.Get("title")
	assert.Equal(t, "Changelog", title)

	body := string(doc.Body)
	assert.Contains(t, body, "[Contributing Guide](https://github.com/pixeltable/pixeltable/blob/main/CONTRIBUTING.md)")
	assert.Contains(t, body, "### v0.4.16\n\n**Released:** September 03, 2025  \n"+
		"**Author:** [@aaron-siegel](https://github.com/aaron-siegel)  \n"+
		"**View on GitHub:** [v0.4.16](https://github.com/pixeltable/pixeltable/releases/tag/v0.4.16)\n\n")
	assert.Contains(t, body, "#### What's Changed\n")
	assert.Contains(t, body, "##### Details\n")
	assert.Contains(t, body, "in [#289](https://github.com/pixeltable/pixeltable/pull/289)\n")
	assert.Contains(t, body, "Already linked [#290](https://github.com/pixeltable/pixeltable/pull/290)\n")
	assert.Contains(t, body, "## not a heading https://github.com/pixeltable/pixeltable/pull/1\n")

	assert.Contains(t, body, "### v0.4.15\n\n**Released:** Unknown date  \n**Author:** [@Unknown](https://github.com/Unknown)  \n")
	assert.Equal(t, 2, strings.Count(body, "\n\n---\n\n### "))
}

func TestShortenPullLinks(t *testing.T) {
	re := pullLinkPattern(repo)
	tests := []struct{ in, want string }{
		{"in https://github.com/pixeltable/pixeltable/pull/7", "in [#7](https://github.com/pixeltable/pixeltable/pull/7)"},
		{"see (https://github.com/pixeltable/pixeltable/pull/7)", "see (https://github.com/pixeltable/pixeltable/pull/7)"},
		{"<https://github.com/pixeltable/pixeltable/pull/7>", "<https://github.com/pixeltable/pixeltable/pull/7>"},
		{"other https://github.com/acme/tool/pull/7", "other https://github.com/acme/tool/pull/7"},
		{
			"https://github.com/pixeltable/pixeltable/pull/1 and https://github.com/pixeltable/pixeltable/pull/2",
			"[#1](https://github.com/pixeltable/pixeltable/pull/1) and [#2](https://github.com/pixeltable/pixeltable/pull/2)",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, string(shortenPullLinks(re, []byte(tt.in))))
	}
}

var contributors = []forge.Contributor{
	{Login: "bot", Type: "Bot", Contributions: 500},
	{Login: "low", Type: "User", Contributions: 1, HTMLURL: "https://github.com/low", AvatarURL: "https://avatars/low.png"},
	{Login: "high", Type: "User", Contributions: 42},
	{Login: "tie", Type: "User", Contributions: 1},
}

func TestHumans(t *testing.T) {
	var logins []string
	for _, c := range Humans(contributors) {
		logins = append(logins, c.Login)
	}
	assert.Equal(t, []string{"high", "low", "tie"}, logins)
	assert.Equal(t, "bot", contributors[0].Login)
}

func TestRenderContributors(t *testing.T) {
	out, err := RenderContributors(contributors, ContributorsOptions{Repo: repo})
	require.NoError(t, err)
	s := string(out)

	assert.True(t, strings.HasPrefix(s, "---\ntitle: \"Our Contributors\"\n"))
	assert.NotContains(t, s, "@bot")
	assert.Contains(t, s, `<div style="display: inline-block; margin: 10px; text-align: center; width: 150px;">`+
		`<a href="https://github.com/low" target="_blank" style="text-decoration: none;">`+
		`<img src="https://avatars/low.png" alt="low" style="border-radius: 50%; width: 100px; height: 100px; border: 2px solid #e5e7eb;"/>`)
	assert.Contains(t, s, "<div style=\"margin-top: 8px; font-weight: 600; color: #1f2937;\">@low</div>")
	assert.Contains(t, s, ">1 contribution</div>")
	assert.Contains(t, s, ">42 contributions</div>")
	assert.Less(t, strings.Index(s, "@high"), strings.Index(s, "@low"))
	assert.Contains(t, s, "[GitHub repository](https://github.com/pixeltable/pixeltable)")
}

type fakeGitHub struct {
	releases     []forge.Release
	contributors []forge.Contributor
	err          error
}

func (f *fakeGitHub) ListReleases(_ context.Context, _ string, max int) ([]forge.Release, error) {
	if len(f.releases) > max {
		return f.releases[:max], f.err
	}
	return f.releases, f.err
}

func (f *fakeGitHub) ListContributors(context.Context, string) ([]forge.Contributor, error) {
	return f.contributors, f.err
}

func TestWriteChangelog(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	dir := filepath.Join(t.TempDir(), "changelog")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.mdx"), []byte("x"), 0o644))

	n, err := WriteChangelog(context.Background(), &fakeGitHub{releases: releases}, dir, 1, ChangelogOptions{Repo: repo}, logger)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, filepath.Join(dir, "old.mdx"))
	data, err := os.ReadFile(filepath.Join(dir, ChangelogFile))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "v0.4.15")

	t.Run("fetch failure keeps output", func(t *testing.T) {
		_, err := WriteChangelog(context.Background(), &fakeGitHub{err: stderrors.New("boom")}, dir, 10, ChangelogOptions{Repo: repo}, logger)
		require.Error(t, err)
		assert.FileExists(t, filepath.Join(dir, ChangelogFile))
	})

	t.Run("no releases writes nothing", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "changelog")
		n, err := WriteChangelog(context.Background(), &fakeGitHub{}, empty, 10, ChangelogOptions{Repo: repo}, logger)
		require.NoError(t, err)
		assert.Zero(t, n)
		assert.NoDirExists(t, empty)
	})
}

func TestWriteContributors(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	dir := filepath.Join(t.TempDir(), "community")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.mdx"), []byte("x"), 0o644))

	n, err := WriteContributors(context.Background(), &fakeGitHub{contributors: contributors}, dir, ContributorsOptions{Repo: repo}, logger)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.FileExists(t, filepath.Join(dir, "keep.mdx"))
	assert.FileExists(t, filepath.Join(dir, ContributorsFile))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	n, err = WriteContributors(context.Background(), &fakeGitHub{contributors: contributors[:1]}, dir, ContributorsOptions{Repo: repo}, logger)
	require.NoError(t, err)
	assert.Zero(t, n)
}
