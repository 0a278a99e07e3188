package pager

import (
	"math"
	"strings"
)

// Closest returns the candidate with the smallest edit distance to input,
// ignoring case. The first candidate wins a tie. It returns "" when there are
// no candidates.
func Closest(input string, candidates []string) string {
	in := []rune(strings.ToLower(input))
	best, closest := math.MaxInt, ""

	for _, candidate := range candidates {
		if d := editDistance(in, []rune(strings.ToLower(candidate))); d < best {
			best, closest = d, candidate
		}
	}

	return closest
}

// editDistance counts the single rune insertions, deletions and substitutions
// turning a into b. Two rows of the table are kept.
func editDistance(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			sub := prev[j-1]
			if a[i-1] != b[j-1] {
				sub++
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, sub)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
