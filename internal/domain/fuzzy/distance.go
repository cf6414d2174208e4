// Package fuzzy provides the edit-distance primitive shared by alias expansion
// and search ranking.
package fuzzy

// Threshold is the largest distance at which two terms still count as a fuzzy match.
const Threshold = 2

// Distance returns the Levenshtein edit distance between a and b, counting
// unit-cost insertions, deletions and substitutions over code points.
// Comparison is exact; callers lowercase both sides first.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rolling rows over the shorter string.
	if len(rb) > len(ra) {
		ra, rb = rb, ra
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// Within reports whether a and b are at most max edits apart.
// It skips the full computation when the length gap alone exceeds max.
func Within(a, b string, max int) bool {
	la, lb := runeLen(a), runeLen(b)
	if la-lb > max || lb-la > max {
		return false
	}
	return Distance(a, b) <= max
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
