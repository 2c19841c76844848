package versioning

import (
	"slices"
	"strconv"
	"strings"
)

// tuple parses key as "v"-optional dot separated integers.
func tuple(key string) ([]int, bool) {
	parts := strings.Split(strings.TrimPrefix(key, "v"), ".")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}

func rank(key string) (int, []int) {
	if key == LatestKey {
		return 0, nil
	}
	if t, ok := tuple(key); ok {
		return 1, t
	}
	return 2, nil
}

// Compare orders dropdown keys: "latest" first, then versions by descending
// integer tuple, then unparsable keys. Ties fall back to ascending key text,
// which makes the order total.
func Compare(a, b string) int {
	ra, ta := rank(a)
	rb, tb := rank(b)
	if ra != rb {
		return ra - rb
	}
	if ra == 1 {
		if c := slices.Compare(tb, ta); c != 0 {
			return c
		}
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b under Compare.
func Less(a, b string) bool { return Compare(a, b) < 0 }

// Sort orders keys in place with Compare.
func Sort(keys []string) {
	slices.SortStableFunc(keys, Compare)
}

// Highest returns the greatest "v"-prefixed version among names.
func Highest(names []string) (string, bool) {
	best := ""
	for _, n := range names {
		if !strings.HasPrefix(n, "v") {
			continue
		}
		if _, ok := tuple(n); !ok {
			continue
		}
		if best == "" || Less(n, best) {
			best = n
		}
	}
	return best, best != ""
}
