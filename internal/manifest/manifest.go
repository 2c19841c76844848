package manifest

import (
	"bytes"
	"encoding/json"
	"os"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// FileName is the Mintlify site manifest file name.
const FileName = "docs.json"

// Manifest is a parsed docs.json. Everything outside "navigation" is kept verbatim.
type Manifest struct {
	Navigation *Navigation

	root *Object
}

// Decode parses a docs.json document.
func Decode(data []byte) (*Manifest, error) {
	root := NewObject()
	if err := root.UnmarshalJSON(data); err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "parse docs.json").Build()
	}
	m := &Manifest{root: root}
	if raw, ok := root.Raw("navigation"); ok {
		m.Navigation = &Navigation{}
		if err := m.Navigation.UnmarshalJSON(raw); err != nil {
			return nil, errors.WrapError(err, errors.CategoryManifest, "parse docs.json navigation").Build()
		}
	}
	return m, nil
}

// Encode renders the manifest with two-space indentation and a trailing newline.
func (m *Manifest) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "encode docs.json").Build()
	}
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	root := m.root.Clone()
	if m.Navigation != nil {
		if err := root.Set("navigation", m.Navigation); err != nil {
			return nil, err
		}
	}
	return root.MarshalJSON()
}

// Load reads and parses a docs.json file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapError(err, errors.CategoryNotFound, "docs.json not found").
				WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "read docs.json").
			WithContext("path", path).Build()
	}
	m, err := Decode(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}
	return m, nil
}

// LoadOptional is Load, but a missing file yields a nil manifest.
func LoadOptional(path string) (*Manifest, error) {
	m, err := Load(path)
	if errors.HasCategory(err, errors.CategoryNotFound) {
		return nil, nil
	}
	return m, err
}

// Save writes the manifest to path.
func (m *Manifest) Save(path string) error {
	data, err := m.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write docs.json").
			WithContext("path", path).Build()
	}
	return nil
}

// Clone returns a deep copy.
func (m *Manifest) Clone() (*Manifest, error) {
	data, err := m.MarshalJSON()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryManifest, "failed to copy manifest").Build()
	}
	return Decode(data)
}

// Tabs returns the navigation tabs, or nil when the manifest has no navigation.
func (m *Manifest) Tabs() []*Tab {
	if m == nil || m.Navigation == nil {
		return nil
	}
	return m.Navigation.Tabs
}

// FindTab returns the tab named name and its index, or nil and -1.
func (m *Manifest) FindTab(name string) (*Tab, int) {
	for i, t := range m.Tabs() {
		if t.Name == name {
			return t, i
		}
	}
	return nil, -1
}

// PutTab replaces the tab at index i, or appends tab when i is negative.
func (m *Manifest) PutTab(i int, tab *Tab) {
	if m.Navigation == nil {
		m.Navigation = &Navigation{}
	}
	if i < 0 || i >= len(m.Navigation.Tabs) {
		m.Navigation.Tabs = append(m.Navigation.Tabs, tab)
		return
	}
	m.Navigation.Tabs[i] = tab
}

// Pages returns every page referenced by the navigation, in document order.
func (m *Manifest) Pages() []PageRef {
	var out []PageRef
	for _, t := range m.Tabs() {
		out = append(out, Pages(t)...)
	}
	return out
}
