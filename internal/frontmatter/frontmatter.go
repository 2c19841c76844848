package frontmatter

import (
	"bytes"
	"errors"
)

// ErrMissingClosingDelimiter indicates the document opened a `---` block
// that is never closed.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Document is a page split into its YAML frontmatter and body.
type Document struct {
	// Fields is nil when the page has no frontmatter block.
	Fields *Fields
	Body   []byte

	newline string
}

// Parse splits content into frontmatter fields and body.
func Parse(content []byte) (*Document, error) {
	raw, body, had, nl, err := split(content)
	if err != nil {
		return nil, err
	}
	doc := &Document{Body: body, newline: nl}
	if had {
		doc.Fields, err = ParseFields(raw)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Bytes reassembles the document using the newline style it was parsed with.
func (d *Document) Bytes() ([]byte, error) {
	if d.Fields == nil {
		return d.Body, nil
	}
	raw, err := d.Fields.Marshal()
	if err != nil {
		return nil, err
	}
	nl := d.newline
	if nl == "" {
		nl = "\n"
	}
	if nl != "\n" {
		raw = bytes.ReplaceAll(raw, []byte("\n"), []byte(nl))
	}
	return join(raw, d.Body, nl), nil
}

// Render produces a page from fields and body with `\n` newlines.
func Render(fields *Fields, body []byte) ([]byte, error) {
	return (&Document{Fields: fields, Body: body}).Bytes()
}

func split(content []byte) (fm, body []byte, had bool, nl string, err error) {
	nl = detectNewline(content)
	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, nl, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		return []byte{}, content[start+len(open):], true, nl, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, nil, false, nl, ErrMissingClosingDelimiter
	}
	end := start + idx + len(nl)
	return content[start:end], content[start+idx+len(closeSeq):], true, nl, nil
}

func join(fm, body []byte, nl string) []byte {
	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(fm)+len(body))
	out = append(out, delim...)
	out = append(out, fm...)
	out = append(out, delim...)
	return append(out, body...)
}

func detectNewline(content []byte) string {
	if i := bytes.IndexByte(content, '\n'); i > 0 && content[i-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}
