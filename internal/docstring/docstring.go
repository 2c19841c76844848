package docstring

import (
	"regexp"
	"strings"
)

// Param is one documented argument.
type Param struct {
	Name        string
	Type        string
	Optional    bool
	Default     string
	Description string
}

// Returns documents the value a callable returns or yields.
type Returns struct {
	Type        string
	Description string
	Yields      bool
}

// Raises documents one exception a callable may raise.
type Raises struct {
	Type        string
	Description string
}

// Docstring is a parsed Google-style docstring.
type Docstring struct {
	// Summary is the first paragraph, joined to one line.
	Summary string
	// Description is the full text before the first section.
	Description string
	Params      []Param
	Returns     *Returns
	Raises      []Raises
	// Examples is the raw body of the Example(s) section.
	Examples string
}

type sectionKind int

const (
	sectionNone sectionKind = iota
	sectionParams
	sectionReturns
	sectionYields
	sectionRaises
	sectionExamples
	sectionOther
)

var sectionTitles = map[string]sectionKind{
	"args":       sectionParams,
	"arguments":  sectionParams,
	"parameters": sectionParams,
	"params":     sectionParams,
	"returns":    sectionReturns,
	"return":     sectionReturns,
	"yields":     sectionYields,
	"yield":      sectionYields,
	"raises":     sectionRaises,
	"exceptions": sectionRaises,
	"example":    sectionExamples,
	"examples":   sectionExamples,
	"note":       sectionOther,
	"notes":      sectionOther,
	"warning":    sectionOther,
	"warnings":   sectionOther,
	"see also":   sectionOther,
	"attributes": sectionOther,
	"todo":       sectionOther,
}

var (
	sectionRe = regexp.MustCompile(`^([A-Za-z][A-Za-z ]*):\s*$`)
	itemRe    = regexp.MustCompile(`^(\*{0,2}[A-Za-z_][A-Za-z0-9_.]*)\s*(?:\(([^)]*(?:\([^)]*\)[^)]*)*)\))?\s*:\s*(.*)$`)
	defaultRe = regexp.MustCompile("(?i)\\bdefaults?\\s+to\\s+`?([^`\\s,;]+)`?")
)

type section struct {
	kind  sectionKind
	lines []string
}

// Parse parses a docstring. The input may be a raw literal; it is cleaned first.
func Parse(raw string) *Docstring {
	text := Clean(raw)
	d := &Docstring{}
	if text == "" {
		return d
	}

	var intro []string
	var sections []*section
	var cur *section
	for _, line := range strings.Split(text, "\n") {
		if m := sectionRe.FindStringSubmatch(line); m != nil {
			if kind, ok := sectionTitles[strings.ToLower(m[1])]; ok {
				cur = &section{kind: kind}
				sections = append(sections, cur)
				continue
			}
		}
		if cur == nil {
			intro = append(intro, line)
			continue
		}
		cur.lines = append(cur.lines, line)
	}

	d.Description = strings.TrimSpace(strings.Join(intro, "\n"))
	d.Summary = summaryOf(d.Description)

	for _, s := range sections {
		body := trimBlank(dedent(s.lines))
		switch s.kind {
		case sectionParams:
			for _, it := range splitItems(body) {
				d.Params = append(d.Params, parseParam(it))
			}
		case sectionReturns, sectionYields:
			if len(body) > 0 {
				r := parseReturns(body)
				r.Yields = s.kind == sectionYields
				d.Returns = r
			}
		case sectionRaises:
			for _, it := range splitItems(body) {
				d.Raises = append(d.Raises, Raises{Type: it.name, Description: it.description()})
			}
		case sectionExamples:
			d.Examples = strings.Join(body, "\n")
		}
	}
	return d
}

func summaryOf(desc string) string {
	para, _, _ := strings.Cut(desc, "\n\n")
	return strings.Join(strings.Fields(para), " ")
}

func trimBlank(lines []string) []string {
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

type item struct {
	name  string
	typ   string
	first string
	rest  []string
}

func (it item) description() string {
	rest := trimBlank(dedent(it.rest))
	parts := make([]string, 0, 1+len(rest))
	if it.first != "" {
		parts = append(parts, it.first)
	}
	parts = append(parts, rest...)
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// splitItems groups a section body into entries: an unindented line of the
// form "name (type): text" starts an entry and indented lines continue it.
func splitItems(lines []string) []item {
	var items []item
	for _, line := range lines {
		if indentOf(line) == 0 && strings.TrimSpace(line) != "" {
			if m := itemRe.FindStringSubmatch(line); m != nil {
				items = append(items, item{name: m[1], typ: strings.TrimSpace(m[2]), first: strings.TrimSpace(m[3])})
				continue
			}
		}
		if len(items) == 0 {
			continue
		}
		last := &items[len(items)-1]
		last.rest = append(last.rest, line)
	}
	return items
}

func parseParam(it item) Param {
	p := Param{Name: strings.TrimLeft(it.name, "*"), Description: it.description()}
	typ := it.typ
	if base, ok := strings.CutSuffix(typ, "optional"); ok {
		p.Optional = true
		typ = strings.TrimRight(strings.TrimSpace(base), ",")
	}
	p.Type = strings.TrimSpace(typ)
	if m := defaultRe.FindStringSubmatch(p.Description); m != nil {
		p.Default = strings.TrimRight(m[1], ".")
	}
	return p
}

func parseReturns(lines []string) *Returns {
	first := strings.TrimSpace(lines[0])
	rest := strings.TrimSpace(strings.Join(dedent(lines[1:]), "\n"))
	if typ, desc, ok := strings.Cut(first, ":"); ok && looksLikeType(typ) {
		desc = strings.TrimSpace(desc)
		if rest != "" {
			desc = strings.TrimSpace(desc + "\n" + rest)
		}
		return &Returns{Type: strings.TrimSpace(typ), Description: desc}
	}
	return &Returns{Description: strings.TrimSpace(strings.Join(lines, "\n"))}
}

// looksLikeType reports whether s reads as a type annotation rather than prose.
// Spaces are only allowed inside brackets or around a union bar.
func looksLikeType(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	depth := 0
	flat := strings.ReplaceAll(s, " | ", "|")
	for _, r := range flat {
		switch r {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ' ':
			if depth == 0 {
				return false
			}
		}
	}
	return true
}
