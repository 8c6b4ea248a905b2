package extract

import "strings"

// similarity returns a normalized [0,1] string similarity using Levenshtein
// distance, used by the transition screen-resolver (§4.9.4, threshold 0.8)
// and the BusinessFunction→Screen linker (§4.11, threshold 0.6).
func similarity(a, b string) float64 {
	a, b = strings.ToLower(strings.TrimSpace(a)), strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return 1
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	dist := levenshtein(a, b)
	return 1 - float64(dist)/float64(maxLen)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
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
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			min := del
			if ins < min {
				min = ins
			}
			if sub < min {
				min = sub
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// bestMatch returns the name in candidates most similar to target, and its
// score, or ok=false if candidates is empty.
func bestMatch(target string, candidates map[string]string) (id string, score float64, ok bool) {
	for candID, name := range candidates {
		s := similarity(target, name)
		if s > score {
			id, score, ok = candID, s, true
		}
	}
	return id, score, ok
}
