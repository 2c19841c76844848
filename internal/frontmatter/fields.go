package frontmatter

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Fields is an ordered YAML mapping. Keys keep their document order and
// values written through Set are emitted double-quoted.
type Fields struct {
	node *yaml.Node
}

// NewFields builds fields from alternating key/value arguments.
func NewFields(kv ...string) *Fields {
	f := &Fields{node: &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}}
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i], kv[i+1])
	}
	return f
}

// ParseFields parses raw frontmatter (without delimiters).
func ParseFields(raw []byte) (*Fields, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return NewFields(), nil
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parse frontmatter: expected a mapping")
	}
	return &Fields{node: doc.Content[0]}, nil
}

// Keys returns the field names in order.
func (f *Fields) Keys() []string {
	keys := make([]string, 0, len(f.node.Content)/2)
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		keys = append(keys, f.node.Content[i].Value)
	}
	return keys
}

// Get returns the scalar value of key.
func (f *Fields) Get(key string) (string, bool) {
	v := f.value(key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return "", false
	}
	return v.Value, true
}

// Set assigns a string value, appending the key when it is new.
func (f *Fields) Set(key, value string) {
	scalar := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			f.node.Content[i+1] = scalar
			return
		}
	}
	f.node.Content = append(f.node.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		scalar,
	)
}

// Delete removes key.
func (f *Fields) Delete(key string) {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			f.node.Content = append(f.node.Content[:i], f.node.Content[i+2:]...)
			return
		}
	}
}

// Marshal renders the fields as YAML with a trailing newline.
func (f *Fields) Marshal() ([]byte, error) {
	if len(f.node.Content) == 0 {
		return []byte{}, nil
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f.node); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (f *Fields) clone() *Fields {
	n := *f.node
	n.Content = append([]*yaml.Node(nil), f.node.Content...)
	return &Fields{node: &n}
}

func (f *Fields) value(key string) *yaml.Node {
	for i := 0; i+1 < len(f.node.Content); i += 2 {
		if f.node.Content[i].Value == key {
			return f.node.Content[i+1]
		}
	}
	return nil
}
