package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/pxtdocs/internal/foundation/errors"
)

// Node is an element of a navigation tree: *Tab, *Dropdown, *Group or PageRef.
type Node interface {
	isNode()
}

// PageRef is a page path relative to the docs root, e.g. "sdk/latest/table".
type PageRef string

// Group is a named list of pages and nested groups.
type Group struct {
	Name  string
	Pages []Node

	fields *Object
}

// Dropdown is one version of the SDK reference.
type Dropdown struct {
	Key    string
	Icon   string
	Groups []*Group
	Pages  []Node

	fields *Object
}

// Tab is a top-level navigation tab.
type Tab struct {
	Name      string
	Groups    []*Group
	Dropdowns []*Dropdown

	fields *Object
}

// Navigation is the "navigation" object of docs.json.
type Navigation struct {
	Tabs []*Tab

	fields *Object
}

func (PageRef) isNode()   {}
func (*Group) isNode()    {}
func (*Dropdown) isNode() {}
func (*Tab) isNode()      {}

// Attr returns an untyped attribute such as "expanded" or "href".
func (g *Group) Attr(key string) (json.RawMessage, bool) { return g.fields.Raw(key) }

// Attr returns an untyped attribute of the dropdown.
func (d *Dropdown) Attr(key string) (json.RawMessage, bool) { return d.fields.Raw(key) }

// Attr returns an untyped attribute such as "href" or "icon".
func (t *Tab) Attr(key string) (json.RawMessage, bool) { return t.fields.Raw(key) }

// Clone returns a deep copy of the dropdown.
func (d *Dropdown) Clone() (*Dropdown, error) {
	cp := &Dropdown{}
	if err := roundTrip(d, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// Clone returns a deep copy of the tab.
func (t *Tab) Clone() (*Tab, error) {
	cp := &Tab{}
	if err := roundTrip(t, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

// roundTrip copies src into dst through JSON.
func roundTrip(src json.Marshaler, dst json.Unmarshaler) error {
	b, err := src.MarshalJSON()
	if err == nil {
		err = dst.UnmarshalJSON(b)
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryManifest, "failed to copy navigation").Build()
	}
	return nil
}

func decodePages(raw json.RawMessage) ([]Node, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("pages: %w", err)
	}
	nodes := make([]Node, 0, len(items))
	for _, item := range items {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) > 0 && trimmed[0] == '"' {
			var s string
			if err := json.Unmarshal(trimmed, &s); err != nil {
				return nil, err
			}
			nodes = append(nodes, PageRef(s))
			continue
		}
		g := &Group{}
		if err := g.UnmarshalJSON(trimmed); err != nil {
			return nil, err
		}
		nodes = append(nodes, g)
	}
	return nodes, nil
}

func decodeGroups(obj *Object) ([]*Group, error) {
	var groups []*Group
	if _, err := obj.Decode("groups", &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// setOrDelete writes v under key, or removes key when present is false.
func setOrDelete(obj *Object, key string, present bool, v any) error {
	if !present {
		obj.Delete(key)
		return nil
	}
	return obj.Set(key, v)
}

// UnmarshalJSON decodes a group, keeping unknown keys.
func (g *Group) UnmarshalJSON(b []byte) error {
	obj := NewObject()
	if err := obj.UnmarshalJSON(b); err != nil {
		return err
	}
	g.fields = obj
	g.Name = obj.String("group")
	g.Pages = nil
	if raw, ok := obj.Raw("pages"); ok {
		pages, err := decodePages(raw)
		if err != nil {
			return fmt.Errorf("group %q: %w", g.Name, err)
		}
		g.Pages = pages
	}
	return nil
}

// MarshalJSON encodes the group in its original key order.
func (g *Group) MarshalJSON() ([]byte, error) {
	obj := g.fields.Clone()
	if err := setOrDelete(obj, "group", g.Name != "" || obj.Has("group"), g.Name); err != nil {
		return nil, err
	}
	if err := setOrDelete(obj, "pages", g.Pages != nil, g.Pages); err != nil {
		return nil, err
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON decodes a dropdown, keeping unknown keys.
func (d *Dropdown) UnmarshalJSON(b []byte) error {
	obj := NewObject()
	if err := obj.UnmarshalJSON(b); err != nil {
		return err
	}
	d.fields = obj
	d.Key = obj.String("dropdown")
	d.Icon = obj.String("icon")
	groups, err := decodeGroups(obj)
	if err != nil {
		return fmt.Errorf("dropdown %q: %w", d.Key, err)
	}
	d.Groups = groups
	d.Pages = nil
	if raw, ok := obj.Raw("pages"); ok {
		if d.Pages, err = decodePages(raw); err != nil {
			return fmt.Errorf("dropdown %q: %w", d.Key, err)
		}
	}
	return nil
}

// MarshalJSON encodes the dropdown in its original key order.
func (d *Dropdown) MarshalJSON() ([]byte, error) {
	obj := d.fields.Clone()
	steps := []struct {
		key     string
		present bool
		value   any
	}{
		{"dropdown", true, d.Key},
		{"icon", d.Icon != "", d.Icon},
		{"groups", d.Groups != nil, d.Groups},
		{"pages", d.Pages != nil, d.Pages},
	}
	for _, s := range steps {
		if err := setOrDelete(obj, s.key, s.present, s.value); err != nil {
			return nil, err
		}
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON decodes a tab, keeping unknown keys.
func (t *Tab) UnmarshalJSON(b []byte) error {
	obj := NewObject()
	if err := obj.UnmarshalJSON(b); err != nil {
		return err
	}
	t.fields = obj
	t.Name = obj.String("tab")
	groups, err := decodeGroups(obj)
	if err != nil {
		return fmt.Errorf("tab %q: %w", t.Name, err)
	}
	t.Groups = groups
	t.Dropdowns = nil
	if _, err := obj.Decode("dropdowns", &t.Dropdowns); err != nil {
		return fmt.Errorf("tab %q: %w", t.Name, err)
	}
	return nil
}

// MarshalJSON encodes the tab in its original key order.
func (t *Tab) MarshalJSON() ([]byte, error) {
	obj := t.fields.Clone()
	if err := obj.Set("tab", t.Name); err != nil {
		return nil, err
	}
	if err := setOrDelete(obj, "groups", t.Groups != nil, t.Groups); err != nil {
		return nil, err
	}
	if err := setOrDelete(obj, "dropdowns", t.Dropdowns != nil, t.Dropdowns); err != nil {
		return nil, err
	}
	return obj.MarshalJSON()
}

// UnmarshalJSON decodes the navigation object.
func (n *Navigation) UnmarshalJSON(b []byte) error {
	obj := NewObject()
	if err := obj.UnmarshalJSON(b); err != nil {
		return err
	}
	n.fields = obj
	n.Tabs = nil
	if _, err := obj.Decode("tabs", &n.Tabs); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the navigation object.
func (n *Navigation) MarshalJSON() ([]byte, error) {
	obj := n.fields.Clone()
	tabs := n.Tabs
	if tabs == nil {
		tabs = []*Tab{}
	}
	if err := obj.Set("tabs", tabs); err != nil {
		return nil, err
	}
	return obj.MarshalJSON()
}
