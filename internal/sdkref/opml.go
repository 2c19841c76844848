package sdkref

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// Outline is one node of the public API outline. Text is either a group
// label or "type|qualified.name" for a documented item.
type Outline struct {
	Text     string     `xml:"text,attr"`
	Outlines []*Outline `xml:"outline"`
}

// Item splits an item outline into its type and dotted path.
// ok is false for group outlines.
func (o *Outline) Item() (typ, path string, ok bool) {
	typ, path, ok = strings.Cut(o.Text, "|")
	return strings.TrimSpace(typ), strings.TrimSpace(path), ok
}

// OPML is a parsed public API outline file.
type OPML struct {
	Title    string     `xml:"head>title"`
	Outlines []*Outline `xml:"body>outline"`
}

// ParseOPML decodes an outline document.
func ParseOPML(r io.Reader) (*OPML, error) {
	var doc OPML
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse opml: %w", err)
	}
	return &doc, nil
}

// LoadOPML reads and decodes the outline at path.
func LoadOPML(path string) (*OPML, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseOPML(f)
}

// Walk visits every outline in document order.
func (d *OPML) Walk(fn func(o *Outline)) {
	var walk func([]*Outline)
	walk = func(list []*Outline) {
		for _, o := range list {
			fn(o)
			walk(o.Outlines)
		}
	}
	walk(d.Outlines)
}

// Documented maps every module and class path in the outline to the
// (type, name) pairs listed under it.
func (d *OPML) Documented() map[string][]APIItem {
	out := make(map[string][]APIItem)
	d.Walk(func(o *Outline) {
		typ, path, ok := o.Item()
		if !ok || (typ != "module" && typ != "class") {
			return
		}
		items := []APIItem{}
		for _, child := range o.Outlines {
			ct, cp, ok := child.Item()
			if !ok {
				continue
			}
			items = append(items, APIItem{Type: ct, Name: lastSegment(cp)})
		}
		out[path] = items
	})
	return out
}

func lastSegment(path string) string {
	return path[strings.LastIndexByte(path, '.')+1:]
}
