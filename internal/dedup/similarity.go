package dedup

// Trigram similarity over normalized strings, the same measure pg_trgm uses:
// |shared trigrams| / |union of trigrams|, with the input padded so short
// strings still produce a meaningful set.

func trigramSet(s string) map[string]bool {
	set := make(map[string]bool)
	if s == "" {
		return set
	}
	padded := "  " + s + " "
	for i := 0; i+3 <= len(padded); i++ {
		set[padded[i:i+3]] = true
	}
	return set
}

// Similarity returns the trigram similarity of two normalized strings in
// [0, 1]. Identical strings score 1; disjoint strings score 0.
func Similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}

	sa, sb := trigramSet(a), trigramSet(b)
	if len(sa) == 0 || len(sb) == 0 {
		return 0
	}

	shared := 0
	for t := range sa {
		if sb[t] {
			shared++
		}
	}
	union := len(sa) + len(sb) - shared
	return float64(shared) / float64(union)
}
