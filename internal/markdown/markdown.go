package markdown

import (
	"bytes"
	"sort"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Range is a half-open byte range [Start, End) of a source.
type Range struct {
	Start int
	End   int
}

func parse(src []byte) gmast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(src))
}

// CodeRanges returns the byte ranges holding code: the contents of fenced
// code blocks and of inline code spans. Ranges are sorted and disjoint.
func CodeRanges(src []byte) []Range {
	var ranges []Range
	_ = gmast.Walk(parse(src), func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.FencedCodeBlock:
			if lines := node.Lines(); lines.Len() > 0 {
				ranges = append(ranges, Range{Start: lines.At(0).Start, End: lines.At(lines.Len() - 1).Stop})
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.CodeSpan:
			first, ok1 := node.FirstChild().(*gmast.Text)
			last, ok2 := node.LastChild().(*gmast.Text)
			if ok1 && ok2 {
				ranges = append(ranges, Range{Start: first.Segment.Start, End: last.Segment.Stop})
			}
			return gmast.WalkSkipChildren, nil
		}
		return gmast.WalkContinue, nil
	})
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })
	return ranges
}

// RewriteOutsideCode applies fn to every stretch of src that is not code
// and returns the reassembled text. Code is copied through unchanged.
func RewriteOutsideCode(src []byte, fn func([]byte) []byte) []byte {
	var out bytes.Buffer
	pos := 0
	for _, r := range CodeRanges(src) {
		if r.Start < pos {
			continue
		}
		out.Write(fn(src[pos:r.Start]))
		out.Write(src[r.Start:r.End])
		pos = r.End
	}
	out.Write(fn(src[pos:]))
	return out.Bytes()
}
