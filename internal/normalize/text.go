package normalize

import (
	"math"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	trailingPunctRe = regexp.MustCompile(`[.,:;!?]+$`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	spacedSlashRe   = regexp.MustCompile(`\s+/\s+`)
	spacedHyphenRe  = regexp.MustCompile(`\s+-\s+`)
	ampersandRe     = regexp.MustCompile(`\b&\b`)
	withoutRe       = regexp.MustCompile(`\bw/o\b`)
	withRe          = regexp.MustCompile(`\bw/\b`)
	numericOnlyRe   = regexp.MustCompile(`^[\d\s.,-]+$`)
	nonSlugRe       = regexp.MustCompile(`[^a-z0-9]+`)
	hyphenRunRe     = regexp.MustCompile(`-+`)
)

// normalizeLabel converts a raw skill label to its canonical text form.
// The step order matters: dash and slash folding must happen before
// abbreviation expansion, and whitespace is collapsed again afterward.
func normalizeLabel(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.ToLower(s)
	s = trailingPunctRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")

	// Unicode dash variants to ASCII hyphen
	s = strings.ReplaceAll(s, "–", "-") // en-dash
	s = strings.ReplaceAll(s, "—", "-") // em-dash
	s = strings.ReplaceAll(s, "−", "-") // minus sign

	s = spacedSlashRe.ReplaceAllString(s, "-")
	s = spacedHyphenRe.ReplaceAllString(s, "-")

	// Common abbreviations; w/o must be expanded before w/
	s = ampersandRe.ReplaceAllString(s, " and ")
	s = withoutRe.ReplaceAllString(s, "without ")
	s = withRe.ReplaceAllString(s, "with ")

	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// Slugify converts text to a stable lowercase ASCII slug. Accented
// characters are decomposed and the non-ASCII remainder is dropped.
func Slugify(text string) string {
	if text == "" {
		return ""
	}

	s := strings.ToLower(text)
	s = norm.NFKD.String(s)

	var b strings.Builder
	for _, r := range s {
		if r < 128 {
			b.WriteRune(r)
		}
	}

	s = nonSlugRe.ReplaceAllString(b.String(), "-")
	s = strings.Trim(s, "-")
	s = hyphenRunRe.ReplaceAllString(s, "-")

	return s
}

// titleCase capitalizes each word, preserving short all-caps words as
// acronyms.
func titleCase(text string) string {
	words := strings.Fields(text)
	for i, w := range words {
		if isUpperWord(w) && len(w) <= 5 {
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// isUpperWord reports whether the word contains at least one letter and
// no lowercase letters.
func isUpperWord(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	if len(runes) == 0 {
		return w
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func trimRaw(raw string) string { return strings.TrimSpace(raw) }

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round4(v float64) float64 { return math.Round(v*10000) / 10000 }
