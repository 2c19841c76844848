package manifest

import (
	stderrors "errors"
	"slices"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
	"git.home.luguber.info/inful/pxtdocs/internal/versioning"
)

const (
	// DefaultSDKTab is the navigation tab holding the generated SDK reference.
	DefaultSDKTab = "Pixeltable SDK"
	// ArchiveIcon marks dropdowns carried over from an earlier deploy.
	ArchiveIcon = "archive"
	// LatestPrefix is the path prefix of locally generated SDK pages.
	LatestPrefix = "sdk/latest/"
)

// ErrNoSDKTab is returned when the generated manifest lacks the SDK tab.
var ErrNoSDKTab = stderrors.New("sdk tab not found in generated manifest")

// MergeOptions controls Merge.
type MergeOptions struct {
	// TabName identifies the SDK tab; DefaultSDKTab when empty.
	TabName string
	// Version is the version being deployed. Nil keeps the generated "latest" dropdown as is.
	Version *versioning.Version
	// KeepLatest publishes the "latest" dropdown next to the versioned copy.
	KeepLatest bool
}

func (o MergeOptions) tabName() string {
	if o.TabName == "" {
		return DefaultSDKTab
	}
	return o.TabName
}

// MergeReport describes what Merge did to the SDK dropdowns.
type MergeReport struct {
	Dropdowns   []string
	Evicted     []string
	Redeployed  bool
	FirstDeploy bool
}

// Merge combines the deployed manifest (prod, may be nil), the working-copy
// skeleton (local) and the freshly generated manifest into one deployable manifest.
//
// The result starts as a copy of local with its SDK tab replaced by generated's.
// When a version is given the generated "latest" dropdown is renamed to it and
// its pages move from sdk/latest/ to sdk/<version>/. Dropdowns already deployed
// in prod are kept unless they share the deployed version's major.minor line.
func Merge(prod, local, generated *Manifest, opts MergeOptions) (*Manifest, *MergeReport, error) {
	name := opts.tabName()
	if local == nil || generated == nil {
		return nil, nil, errors.ManifestError("local and generated manifests are required").Fatal().Build()
	}
	genTab, _ := generated.FindTab(name)
	if genTab == nil {
		return nil, nil, errors.WrapError(ErrNoSDKTab, errors.CategoryManifest, "cannot merge navigation").
			WithContext("tab", name).Fatal().Build()
	}
	if len(genTab.Dropdowns) != 1 || genTab.Dropdowns[0].Key != versioning.LatestKey {
		keys := dropdownKeys(genTab.Dropdowns)
		return nil, nil, errors.ValidationError("generated SDK tab must hold exactly one \"latest\" dropdown").
			WithContext("tab", name).WithContext("dropdowns", keys).Build()
	}

	result, err := local.Clone()
	if err != nil {
		return nil, nil, err
	}
	tab, err := genTab.Clone()
	if err != nil {
		return nil, nil, err
	}
	_, idx := result.FindTab(name)
	result.PutTab(idx, tab)

	latest := tab.Dropdowns[0]
	fresh := []*Dropdown{latest}
	if opts.Version != nil {
		versioned, err := latest.Clone()
		if err != nil {
			return nil, nil, err
		}
		versioned.Key = opts.Version.Full
		RewritePaths(versioned, LatestPrefix, "sdk/"+opts.Version.Full+"/")
		fresh = []*Dropdown{versioned}
		if opts.KeepLatest {
			fresh = append(fresh, latest)
		}
	}

	report := &MergeReport{}
	merged := fresh
	prodTab, _ := prod.FindTab(name)
	if prodTab != nil && len(prodTab.Dropdowns) > 0 {
		archived := make([]*Dropdown, 0, len(prodTab.Dropdowns))
		for _, d := range prodTab.Dropdowns {
			cp, err := d.Clone()
			if err != nil {
				return nil, nil, err
			}
			cp.Icon = ArchiveIcon
			archived = append(archived, cp)
			if opts.Version != nil && d.Key == opts.Version.Full {
				report.Redeployed = true
			}
		}
		merged = UnionDropdowns(archived, fresh)
	} else {
		report.FirstDeploy = true
	}

	if opts.Version != nil {
		merged, report.Evicted = Evict(merged, *opts.Version)
	}
	SortDropdowns(merged)
	tab.Dropdowns = merged
	report.Dropdowns = dropdownKeys(merged)
	return result, report, nil
}

// UnionDropdowns merges two dropdown lists keyed by dropdown name. Entries of
// overlay replace same-named entries of base in place; new ones are appended.
func UnionDropdowns(base, overlay []*Dropdown) []*Dropdown {
	out := slices.Clone(base)
	index := make(map[string]int, len(out))
	for i, d := range out {
		index[d.Key] = i
	}
	for _, d := range overlay {
		if i, ok := index[d.Key]; ok {
			out[i] = d
			continue
		}
		index[d.Key] = len(out)
		out = append(out, d)
	}
	return out
}

// Evict removes dropdowns on v's major.minor line other than v itself.
func Evict(ds []*Dropdown, v versioning.Version) (kept []*Dropdown, evicted []string) {
	kept = make([]*Dropdown, 0, len(ds))
	for _, d := range ds {
		if d.Key != v.Full && versioning.SameMinorLine(d.Key, v) {
			evicted = append(evicted, d.Key)
			continue
		}
		kept = append(kept, d)
	}
	return kept, evicted
}

// SortDropdowns orders dropdowns with versioning.Compare: latest, then newest first.
func SortDropdowns(ds []*Dropdown) {
	slices.SortStableFunc(ds, func(a, b *Dropdown) int {
		return versioning.Compare(a.Key, b.Key)
	})
}

func dropdownKeys(ds []*Dropdown) []string {
	keys := make([]string, 0, len(ds))
	for _, d := range ds {
		keys = append(keys, d.Key)
	}
	return keys
}
