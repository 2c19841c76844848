package manifest

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

func sdkDropdown(key string) string {
	prefix := "sdk/" + key + "/"
	return fmt.Sprintf(`{"dropdown": %q, "icon": "book", "groups": [
		{"group": "Core", "pages": [%q, {"group": "Functions", "icon": "function", "pages": [%q]}]}
	]}`, key, prefix+"table", prefix+"functions-image")
}

func siteWithSDK(dropdowns ...string) string {
	return `{"name": "Pixeltable", "navigation": {"tabs": [
		{"tab": "Docs", "groups": [{"group": "Intro", "pages": ["index"]}]},
		{"tab": "Pixeltable SDK", "dropdowns": [` + strings.Join(dropdowns, ",") + `]}
	]}}`
}

const localJSON = `{"name": "Pixeltable", "logo": {"light": "logo.svg"}, "navigation": {"tabs": [
	{"tab": "Docs", "groups": [{"group": "Intro", "pages": ["index", "new-page"]}]},
	{"tab": "Pixeltable SDK", "dropdowns": []}
]}}`

func mustVersion(t *testing.T, s string) *versioning.Version {
	t.Helper()
	v, err := versioning.Parse(s)
	require.NoError(t, err)
	return &v
}

func sdkKeys(t *testing.T, m *Manifest) []string {
	t.Helper()
	tab, _ := m.FindTab(DefaultSDKTab)
	require.NotNil(t, tab)
	return dropdownKeys(tab.Dropdowns)
}

func TestMergeEvictsSameMinorLineAndSorts(t *testing.T) {
	prod := mustDecode(t, siteWithSDK(sdkDropdown("v0.3.14"), sdkDropdown("v0.4.16")))
	local := mustDecode(t, localJSON)
	generated := mustDecode(t, siteWithSDK(sdkDropdown("latest")))

	out, report, err := Merge(prod, local, generated, MergeOptions{Version: mustVersion(t, "v0.4.17")})
	require.NoError(t, err)

	assert.Equal(t, []string{"v0.4.17", "v0.3.14"}, sdkKeys(t, out))
	assert.Equal(t, []string{"v0.4.16"}, report.Evicted)
	assert.False(t, report.FirstDeploy)

	tab, _ := out.FindTab(DefaultSDKTab)
	assert.Equal(t, []PageRef{"sdk/v0.4.17/table", "sdk/v0.4.17/functions-image"}, Pages(tab.Dropdowns[0]))
	assert.Equal(t, "book", tab.Dropdowns[0].Icon)
	assert.Equal(t, ArchiveIcon, tab.Dropdowns[1].Icon)

	docs, _ := out.FindTab("Docs")
	assert.Equal(t, []PageRef{"index", "new-page"}, Pages(docs))
	logo, _ := out.root.Raw("logo")
	assert.JSONEq(t, `{"light": "logo.svg"}`, string(logo))
}

func TestMergeIsIdempotent(t *testing.T) {
	prod := mustDecode(t, siteWithSDK(sdkDropdown("v0.3.14"), sdkDropdown("v0.4.16")))
	local := mustDecode(t, localJSON)
	generated := mustDecode(t, siteWithSDK(sdkDropdown("latest")))
	opts := MergeOptions{Version: mustVersion(t, "v0.4.17")}

	first, _, err := Merge(prod, local, generated, opts)
	require.NoError(t, err)
	second, report, err := Merge(first, local, generated, opts)
	require.NoError(t, err)
	assert.True(t, report.Redeployed)

	a, err := first.Encode()
	require.NoError(t, err)
	b, err := second.Encode()
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestMergeRedeployReplacesSameVersion(t *testing.T) {
	stale := `{"dropdown": "v0.4.17", "groups": [{"group": "Old", "pages": ["sdk/v0.4.17/gone"]}]}`
	prod := mustDecode(t, siteWithSDK(stale))
	out, report, err := Merge(prod, mustDecode(t, localJSON), mustDecode(t, siteWithSDK(sdkDropdown("latest"))),
		MergeOptions{Version: mustVersion(t, "0.4.17")})
	require.NoError(t, err)
	assert.True(t, report.Redeployed)
	assert.Empty(t, report.Evicted)

	tab, _ := out.FindTab(DefaultSDKTab)
	require.Len(t, tab.Dropdowns, 1)
	assert.Equal(t, "Core", tab.Dropdowns[0].Groups[0].Name)
}

func TestMergeFirstDeploy(t *testing.T) {
	out, report, err := Merge(nil, mustDecode(t, localJSON), mustDecode(t, siteWithSDK(sdkDropdown("latest"))),
		MergeOptions{Version: mustVersion(t, "v0.5.0"), KeepLatest: true})
	require.NoError(t, err)
	assert.True(t, report.FirstDeploy)
	assert.Equal(t, []string{"latest", "v0.5.0"}, sdkKeys(t, out))
}

func TestMergeWithoutVersionKeepsLatest(t *testing.T) {
	out, _, err := Merge(nil, mustDecode(t, localJSON), mustDecode(t, siteWithSDK(sdkDropdown("latest"))), MergeOptions{})
	require.NoError(t, err)
	tab, _ := out.FindTab(DefaultSDKTab)
	assert.Equal(t, []PageRef{"sdk/latest/table", "sdk/latest/functions-image"}, Pages(tab))
}

func TestMergeAppendsSDKTabWhenLocalLacksIt(t *testing.T) {
	local := mustDecode(t, `{"navigation": {"tabs": [{"tab": "Docs", "groups": []}]}}`)
	out, _, err := Merge(nil, local, mustDecode(t, siteWithSDK(sdkDropdown("latest"))), MergeOptions{})
	require.NoError(t, err)
	_, idx := out.FindTab(DefaultSDKTab)
	assert.Equal(t, 1, idx)
}

func TestMergeRequiresGeneratedSDKTab(t *testing.T) {
	generated := mustDecode(t, `{"navigation": {"tabs": [{"tab": "Docs", "groups": []}]}}`)
	_, _, err := Merge(nil, mustDecode(t, localJSON), generated, MergeOptions{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSDKTab))
}

func TestMergeRejectsUnexpectedGeneratedDropdowns(t *testing.T) {
	generated := mustDecode(t, siteWithSDK(sdkDropdown("latest"), sdkDropdown("v0.1.0")))
	_, _, err := Merge(nil, mustDecode(t, localJSON), generated, MergeOptions{})
	require.Error(t, err)
}

func TestRewritePathsTouchesOnlyPages(t *testing.T) {
	d := &Dropdown{}
	require.NoError(t, d.UnmarshalJSON([]byte(sdkDropdown("latest"))))
	RewritePaths(d, "sdk/latest/", "sdk/v0.4.17/")

	assert.Equal(t, []PageRef{"sdk/v0.4.17/table", "sdk/v0.4.17/functions-image"}, Pages(d))
	assert.Equal(t, "latest", d.Key)
	assert.Equal(t, "book", d.Icon)
	assert.Equal(t, "Core", d.Groups[0].Name)
	nested := d.Groups[0].Pages[1].(*Group)
	assert.Equal(t, "Functions", nested.Name)
	icon, _ := nested.Attr("icon")
	assert.JSONEq(t, `"function"`, string(icon))
}

func TestReplaceSegmentPrefix(t *testing.T) {
	assert.Equal(t, "sdk/v1/x", replaceSegmentPrefix("sdk/latest/x", "sdk/latest/", "sdk/v1/"))
	assert.Equal(t, "docs/sdk/v1/x", replaceSegmentPrefix("docs/sdk/latest/x", "sdk/latest/", "sdk/v1/"))
	assert.Equal(t, "mysdk/latest/x", replaceSegmentPrefix("mysdk/latest/x", "sdk/latest/", "sdk/v1/"))
}

func TestSortDropdowns(t *testing.T) {
	ds := []*Dropdown{{Key: "v0.3"}, {Key: "latest"}, {Key: "v0.10"}}
	SortDropdowns(ds)
	assert.Equal(t, []string{"latest", "v0.10", "v0.3"}, dropdownKeys(ds))
}
