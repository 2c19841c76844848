package manifest

import (
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

// LegacyAPITab is the external-link tab that older docs.json files use in place of the SDK tab.
const LegacyAPITab = "API Reference"

// UpdateAction says how UpdateNavigation changed the manifest.
type UpdateAction string

const (
	UpdateAdded    UpdateAction = "added"
	UpdateReplaced UpdateAction = "replaced"
	UpdateMerged   UpdateAction = "merged"
)

// UpdateNavigation installs a generated SDK tab into m.
//
// The tab replaces a same-named tab or the legacy "API Reference" link tab.
// When both the existing and the new tab carry dropdowns they are merged by
// key, dropping older dropdowns on the same major.minor line as a new one.
// Otherwise the tab is appended.
func UpdateNavigation(m *Manifest, tab *Tab) UpdateAction {
	idx := -1
	for i, t := range m.Tabs() {
		if t.Name == tab.Name {
			idx = i
			break
		}
		if _, hasHref := t.Attr("href"); t.Name == LegacyAPITab && hasHref {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.PutTab(-1, tab)
		return UpdateAdded
	}

	existing := m.Navigation.Tabs[idx]
	if existing.Dropdowns == nil || tab.Dropdowns == nil || existing.Name != tab.Name {
		m.PutTab(idx, tab)
		return UpdateReplaced
	}

	merged := UnionDropdowns(existing.Dropdowns, tab.Dropdowns)
	for _, d := range tab.Dropdowns {
		if v, err := versioning.Parse(d.Key); err == nil && d.Key != versioning.LatestKey {
			merged, _ = Evict(merged, v)
		}
	}
	SortDropdowns(merged)
	existing.Dropdowns = merged
	return UpdateMerged
}
