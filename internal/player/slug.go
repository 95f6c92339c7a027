package player

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters NFD leaves intact (no combining mark to strip) but that appear in
// player names often enough that dropping them would mangle the slug.
var letterFolds = strings.NewReplacer(
	"ø", "o", "æ", "ae", "œ", "oe", "ß", "ss",
	"ł", "l", "đ", "d", "ð", "d", "þ", "th", "ı", "i",
)

// Slugify derives the identity slug used to join records across feeds:
// lowercase, diacritics stripped, only [a-z0-9-], no repeated or edge hyphens.
// Whitespace and underscores separate words. Empty output means the input
// carries no identity.
func Slugify(raw string) string {
	if raw == "" {
		return ""
	}

	s := letterFolds.Replace(strings.ToLower(raw))
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	if folded, _, err := transform.String(stripMarks, s); err == nil {
		// Stripping can expose a foldable base letter (ǿ is ø plus an acute).
		s = letterFolds.Replace(folded)
	}

	var b strings.Builder
	b.Grow(len(s))
	lastHyphen := true // suppresses a leading hyphen
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case r == '-' || r == '_' || unicode.IsSpace(r):
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	return strings.TrimRight(b.String(), "-")
}
