// Package slug turns page titles into URL path segments.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Slugger lower-cases titles using the rules of one language.
type Slugger struct {
	tag language.Tag
}

// New returns a Slugger for the given language. language.Und gives the
// default Unicode case mapping.
func New(tag language.Tag) *Slugger {
	return &Slugger{tag: tag}
}

// Slugify lower-cases title and replaces every rune that is not a Latin or
// Cyrillic letter or a digit with '-'. Runs of hyphens are kept as is and
// nothing is trimmed, so the result has exactly one rune per input rune of
// the lower-cased title.
func (s *Slugger) Slugify(title string) string {
	lower := cases.Lower(s.tag).String(title)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if keep(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

// URL joins base and the slug of title.
func (s *Slugger) URL(base, title string) string {
	return strings.TrimRight(base, "/") + "/" + s.Slugify(title)
}

func keep(r rune) bool {
	if unicode.IsLetter(r) {
		return unicode.Is(unicode.Latin, r) || unicode.Is(unicode.Cyrillic, r)
	}
	return unicode.IsDigit(r)
}

var und = New(language.Und)

// Slugify uses the default case mapping.
func Slugify(title string) string {
	return und.Slugify(title)
}
