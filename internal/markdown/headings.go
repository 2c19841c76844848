package markdown

import (
	"bytes"
	"strings"

	gmast "github.com/yuin/goldmark/ast"
)

const maxHeadingLevel = 6

type headingSite struct {
	level int
	node  *gmast.Heading
}

// DemoteHeadings shifts every heading down so the shallowest one sits at
// level shallowest. Levels are capped at 6, headings inside code are left
// alone and setext headings are rewritten in ATX form. Text that is already
// at or below the requested depth is returned unchanged.
func DemoteHeadings(src []byte, shallowest int) ([]byte, error) {
	var sites []headingSite
	minLevel := maxHeadingLevel + 1
	_ = gmast.Walk(parse(src), func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if h, ok := n.(*gmast.Heading); ok && entering {
			if h.Lines().Len() > 0 {
				sites = append(sites, headingSite{level: h.Level, node: h})
				minLevel = min(minLevel, h.Level)
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})

	delta := shallowest - minLevel
	if len(sites) == 0 || delta <= 0 {
		return src, nil
	}

	var edits []Edit
	for _, s := range sites {
		target := min(s.level+delta, maxHeadingLevel)
		edits = append(edits, headingEdits(src, s.node, target-s.level, target)...)
	}
	return ApplyEdits(src, edits)
}

func headingEdits(src []byte, h *gmast.Heading, add, target int) []Edit {
	lines := h.Lines()
	first := lines.At(0)
	ls := lineStart(src, first.Start)

	prefix := bytes.TrimRight(src[ls:first.Start], " \t")
	if bytes.HasSuffix(prefix, []byte("#")) {
		p := len(prefix)
		for p > 0 && prefix[p-1] == '#' {
			p--
		}
		if add == 0 {
			return nil
		}
		return []Edit{{Start: ls + p, End: ls + p, Replacement: []byte(strings.Repeat("#", add))}}
	}

	// Setext: prefix the text, fold continuation lines, drop the underline.
	edits := []Edit{{Start: first.Start, End: first.Start, Replacement: []byte(strings.Repeat("#", target) + " ")}}
	for i := 1; i < lines.Len(); i++ {
		seg := lines.At(i)
		brk := lineStart(src, seg.Start) - 1
		if brk > 0 && src[brk-1] == '\r' {
			brk--
		}
		edits = append(edits, Edit{Start: brk, End: seg.Start, Replacement: []byte(" ")})
	}
	last := lines.At(lines.Len() - 1)
	if idx := bytes.IndexByte(src[last.Start:], '\n'); idx >= 0 {
		underline := last.Start + idx + 1
		end := len(src)
		if j := bytes.IndexByte(src[underline:], '\n'); j >= 0 {
			end = underline + j + 1
		}
		edits = append(edits, Edit{Start: underline, End: end})
	}
	return edits
}

func lineStart(src []byte, pos int) int {
	return bytes.LastIndexByte(src[:pos], '\n') + 1
}
