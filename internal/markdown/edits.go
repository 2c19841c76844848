package markdown

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
)

// Edit replaces source[Start:End] with Replacement. Offsets refer to the
// original source; Start == End inserts.
type Edit struct {
	Start       int
	End         int
	Replacement []byte
}

// ApplyEdits applies non-overlapping byte-range edits to source in one pass.
// Insertions at the same offset keep their given order.
func ApplyEdits(source []byte, edits []Edit) ([]byte, error) {
	if len(edits) == 0 {
		return source, nil
	}

	ordered := slices.Clone(edits)
	slices.SortStableFunc(ordered, func(a, b Edit) int {
		return cmp.Or(cmp.Compare(a.Start, b.Start), cmp.Compare(a.End, b.End))
	})

	var out bytes.Buffer
	out.Grow(len(source))
	pos := 0
	for i, e := range ordered {
		if e.Start < 0 || e.End < e.Start || e.End > len(source) {
			return nil, fmt.Errorf("invalid edit [%d,%d) for %d bytes", e.Start, e.End, len(source))
		}
		if e.Start < pos {
			return nil, fmt.Errorf("edit %d at %d overlaps the previous edit ending at %d", i, e.Start, pos)
		}
		out.Write(source[pos:e.Start])
		out.Write(e.Replacement)
		pos = e.End
	}
	out.Write(source[pos:])
	return out.Bytes(), nil
}
