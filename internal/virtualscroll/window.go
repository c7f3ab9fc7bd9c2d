package virtualscroll

import "sort"

// Window returns the inclusive index range [first, last] of extents that must
// be rendered for a viewport starting at y with the given height, keeping
// margin extra layout units on each side. extents must be sorted by Position.
// ok is false when nothing should be rendered.
//
// first is the lowest index whose row starts within margin of y or whose
// subtree ends below y. last stops before the first node that starts more than
// margin below the viewport bottom; when no node does, it is the final index.
// That boundary node is excluded, unlike an inclusive scan that would also
// render the first node past the bottom margin.
func Window(extents []Extent, y, viewportHeight, margin float64) (first, last int, ok bool) {
	if len(extents) == 0 {
		return 0, 0, false
	}

	first = boundarySearch(len(extents), 0, func(i int) bool {
		e := extents[i]
		return e.Position+margin > y || e.End() > y
	})

	bottom := y + viewportHeight
	below := func(i int) bool {
		return extents[i].Position-margin > bottom
	}
	last = boundarySearch(len(extents), first, below)
	if below(last) {
		last--
	}
	if last < first {
		return 0, 0, false
	}
	return first, last, true
}

// boundarySearch returns the lowest index in [from, n) at which pred turns
// true, assuming pred is false for a prefix and true for the rest. When pred
// never holds it returns n-1.
func boundarySearch(n, from int, pred func(int) bool) int {
	i := from + sort.Search(n-from, func(k int) bool {
		return pred(from + k)
	})
	if i >= n {
		return n - 1
	}
	return i
}
