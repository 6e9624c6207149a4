package identity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// localPart returns the text before the last '@', or the whole value.
func localPart(s string) string {
	if i := strings.LastIndex(s, "@"); i > 0 {
		return s[:i]
	}
	return s
}

// Distance is the edit distance between the local-parts of a and b, normalized
// by the longer local-part so that it falls in [0,1].
func Distance(a, b string) float64 {
	la, lb := localPart(a), localPart(b)
	longest := max(utf8.RuneCountInString(la), utf8.RuneCountInString(lb))
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(la, lb)) / float64(longest)
}

// AreSimilar reports whether two identities are within maxDistance of each other.
func AreSimilar(a, b string, maxDistance float64) bool {
	return Distance(a, b) <= maxDistance
}
