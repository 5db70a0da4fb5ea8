package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

const separator = "-"

// Make creates a lowercase URL-safe slug from the input string. ASCII
// letters and digits pass through, common Latin diacritics are folded to
// ASCII, every other run of characters collapses to a single separator.
// The dot never survives: slugs are embedded into dot-separated permission
// strings.
func Make(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // avoids a leading separator
	for _, r := range s {
		r = unicode.ToLower(r)

		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}

		if folded, ok := diacriticMap[r]; ok {
			b.WriteRune(folded)
			lastWasSep = false
			continue
		}

		if !lastWasSep {
			b.WriteString(separator)
			lastWasSep = true
		}
	}

	return strings.TrimSuffix(b.String(), separator)
}

// MakeUnique appends a short random suffix so concurrent creations with the
// same name do not collide on the unique slug column.
func MakeUnique(s string, suffixLen int) string {
	base := Make(s)
	if suffixLen <= 0 {
		return base
	}
	if base == "" {
		return randomSuffix(suffixLen)
	}
	return base + separator + randomSuffix(suffixLen)
}

// diacriticMap folds common Latin diacritics to ASCII. Covers the major
// European languages seen in community names; not exhaustive.
var diacriticMap = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ą': 'a', 'æ': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'đ': 'd', 'ď': 'd',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'œ': 'o',
	'ř': 'r',
	'ś': 's', 'š': 's', 'ș': 's', 'ß': 's',
	'ť': 't', 'ț': 't',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ů': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
}

func randomSuffix(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Deterministic fallback; collisions are caught by the unique index.
		for i := range b {
			b[i] = charset[i%len(charset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}
