package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Latin letters used in Taqbaylit and French that do not decompose into a
// base letter plus a combining mark.
var letters = strings.NewReplacer(
	"ɣ", "gh",
	"ɛ", "e",
	"œ", "oe",
	"æ", "ae",
	"ß", "ss",
)

// Generate turns a product or collection title into a URL handle:
//
//	"Imnayen Essential Tee" -> "imnayen-essential-tee"
//	"Tiɣri n Tmurt"         -> "tighri-n-tmurt"
//	"Ḍḍu Ĉapeau été"        -> "ddu-capeau-ete"
func Generate(name string) string {
	s := letters.Replace(strings.ToLower(strings.TrimSpace(name)))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	return strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
}
