package matcher

import (
	"strings"
	"unicode"
)

// normalizeTitle case-folds a title and strips punctuation so "Hold On
// (Slowed)" and "hold on slowed" compare equal token-wise.
func normalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// TitleSimilarity scores two titles in [0,1] with a token overlap
// coefficient over the normalized forms: the intersection size divided by
// the smaller token set. Full containment ("Hold On" inside "Hold On
// (slowed)") scores 1.0, which is what sped-up/slowed re-uploads need.
func TitleSimilarity(a, b string) float64 {
	ta := tokenSet(normalizeTitle(a))
	tb := tokenSet(normalizeTitle(b))
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	smaller, larger := ta, tb
	if len(tb) < len(ta) {
		smaller, larger = tb, ta
	}

	common := 0
	for tok := range smaller {
		if _, ok := larger[tok]; ok {
			common++
		}
	}
	return float64(common) / float64(len(smaller))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		set[tok] = struct{}{}
	}
	return set
}
