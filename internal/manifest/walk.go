package manifest

// Walk calls visit for n and every node below it in document order.
// Returning false from visit skips the node's children.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch v := n.(type) {
	case *Tab:
		for _, g := range v.Groups {
			Walk(g, visit)
		}
		for _, d := range v.Dropdowns {
			Walk(d, visit)
		}
	case *Dropdown:
		for _, g := range v.Groups {
			Walk(g, visit)
		}
		for _, c := range v.Pages {
			Walk(c, visit)
		}
	case *Group:
		for _, c := range v.Pages {
			Walk(c, visit)
		}
	}
}

// Fold combines every page below n into acc, in document order.
func Fold[T any](n Node, acc T, fn func(T, PageRef) T) T {
	Walk(n, func(c Node) bool {
		if p, ok := c.(PageRef); ok {
			acc = fn(acc, p)
		}
		return true
	})
	return acc
}

// Pages flattens n to its page list.
func Pages(n Node) []PageRef {
	return Fold(n, []PageRef(nil), func(acc []PageRef, p PageRef) []PageRef {
		return append(acc, p)
	})
}

// MapPages replaces every page below n with fn(page), in place.
func MapPages(n Node, fn func(PageRef) PageRef) {
	Walk(n, func(c Node) bool {
		switch v := c.(type) {
		case *Group:
			mapLeaves(v.Pages, fn)
		case *Dropdown:
			mapLeaves(v.Pages, fn)
		}
		return true
	})
}

func mapLeaves(nodes []Node, fn func(PageRef) PageRef) {
	for i, c := range nodes {
		if p, ok := c.(PageRef); ok {
			nodes[i] = fn(p)
		}
	}
}
