// Package scripture resolves and normalizes scripture references.
package scripture

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// RangeDash separates the endpoints of a canonical range.
const RangeDash = "–"

// ListSeparator joins multiple canonical references.
const ListSeparator = "; "

var (
	dashVariants   = regexp.MustCompile(`\s*[-\x{2010}-\x{2015}\x{2212}]+\s*`)
	spaceRun       = regexp.MustCompile(`\s+`)
	trailingParens = regexp.MustCompile(`\s*\([^()]*\)\s*$`)
	dottedVerse    = regexp.MustCompile(`(\d)\.(\d)`)
	bookLocator    = regexp.MustCompile(`^(.*?\pL[\pL .']*?)\.?\s*(\d[\d\s:.,\-\x{2010}-\x{2015}\x{2212}]*)?$`)
	numberedBook   = regexp.MustCompile(`^(?:([123])\s*|(i{1,3})\s+)(\pL.*)$`)
	trailingCode   = regexp.MustCompile(`^(.*\pL.*\d)\s+[A-Z][A-Z0-9]{1,5}$`)
	unicodeSpaces  = strings.NewReplacer("\u00a0", " ", "\u2007", " ", "\u2009", " ", "\u202f", " ", "\u3000", " ")
)

// Normalize returns the canonical form of a human- or provider-written
// reference. It is the only normalization used for cache keys, plan
// ingestion and repair tooling. Multiple references separated by ";" are
// normalized individually and rejoined with ListSeparator.
func Normalize(ref string) string {
	ref = unicodeSpaces.Replace(norm.NFC.String(ref))
	parts := strings.Split(ref, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := normalizeOne(p); n != "" {
			out = append(out, n)
		}
	}
	return strings.Join(out, ListSeparator)
}

// NormalizeList normalizes each reference and drops empties.
func NormalizeList(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if n := Normalize(r); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Join normalizes refs and joins them into a single canonical key.
func Join(refs []string) string {
	return strings.Join(NormalizeList(refs), ListSeparator)
}

// NormalizeTranslation upper-cases and trims a translation code.
func NormalizeTranslation(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func normalizeOne(ref string) string {
	ref = strings.TrimSpace(spaceRun.ReplaceAllString(ref, " "))
	if ref == "" {
		return ""
	}
	// "John 3:16 (ESV)" -> "John 3:16"
	ref = strings.TrimSpace(trailingParens.ReplaceAllString(ref, ""))
	// "John 3:16 NIV" -> "John 3:16"
	ref = trailingCode.ReplaceAllString(ref, "$1")

	m := bookLocator.FindStringSubmatch(ref)
	if m == nil {
		if ref[0] >= '0' && ref[0] <= '9' {
			return normalizeLocator(ref)
		}
		return ref
	}
	book := normalizeBook(m[1])
	loc := normalizeLocator(m[2])
	if loc == "" {
		return book
	}
	return book + " " + loc
}

func normalizeLocator(loc string) string {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return ""
	}
	loc = dashVariants.ReplaceAllString(loc, RangeDash)
	loc = dottedVerse.ReplaceAllString(loc, "$1:$2")
	loc = strings.ReplaceAll(loc, " ", "")
	loc = strings.ReplaceAll(loc, ",", ", ")
	return strings.Trim(loc, RangeDash+", ")
}

func normalizeBook(raw string) string {
	b := strings.ToLower(strings.TrimSpace(raw))
	b = strings.TrimSuffix(b, ".")
	b = strings.ReplaceAll(b, ".", "")
	b = spaceRun.ReplaceAllString(b, " ")

	prefix := ""
	if m := numberedBook.FindStringSubmatch(b); m != nil && isBookName(m[3]) {
		prefix = m[1]
		if prefix == "" {
			prefix = romanPrefix(m[2])
		}
		prefix += " "
		b = m[3]
	}
	if full, ok := bookAliases[b]; ok {
		return prefix + full
	}
	return prefix + titleBook(b)
}

func isBookName(s string) bool {
	if _, ok := bookAliases[s]; ok {
		return true
	}
	return len(s) > 1
}

func romanPrefix(p string) string {
	switch p {
	case "i":
		return "1"
	case "ii":
		return "2"
	case "iii":
		return "3"
	}
	return p
}

func titleBook(b string) string {
	// cases.Caser is stateful, so one is built per call.
	words := strings.Fields(cases.Title(language.English).String(b))
	for i, w := range words {
		if i > 0 && (w == "Of" || w == "The") {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

// bookAliases maps lower-cased names and abbreviations (without the
// numeric prefix) to the canonical book name.
var bookAliases = map[string]string{
	"gen": "Genesis", "ge": "Genesis", "gn": "Genesis",
	"exod": "Exodus", "ex": "Exodus", "exo": "Exodus",
	"lev": "Leviticus", "lv": "Leviticus",
	"num": "Numbers", "nm": "Numbers",
	"deut": "Deuteronomy", "dt": "Deuteronomy",
	"josh": "Joshua", "jos": "Joshua",
	"judg": "Judges", "jdg": "Judges",
	"sam": "Samuel", "sa": "Samuel",
	"kgs": "Kings", "ki": "Kings",
	"chr": "Chronicles", "chron": "Chronicles",
	"neh": "Nehemiah",
	"esth": "Esther", "est": "Esther",
	"ps": "Psalms", "psa": "Psalms", "psalm": "Psalms", "pss": "Psalms", "psalms": "Psalms",
	"prov": "Proverbs", "pr": "Proverbs", "prv": "Proverbs",
	"eccl": "Ecclesiastes", "ecc": "Ecclesiastes", "eccles": "Ecclesiastes",
	"song": "Song of Solomon", "sos": "Song of Solomon", "song of songs": "Song of Solomon",
	"song of solomon": "Song of Solomon",
	"isa": "Isaiah",
	"jer": "Jeremiah",
	"lam": "Lamentations",
	"ezek": "Ezekiel", "eze": "Ezekiel",
	"dan": "Daniel", "dn": "Daniel",
	"hos": "Hosea",
	"obad": "Obadiah", "ob": "Obadiah",
	"mic": "Micah",
	"nah": "Nahum",
	"hab": "Habakkuk",
	"zeph": "Zephaniah",
	"hag": "Haggai",
	"zech": "Zechariah",
	"mal": "Malachi",
	"matt": "Matthew", "mt": "Matthew", "mat": "Matthew",
	"mk": "Mark", "mrk": "Mark", "mar": "Mark",
	"lk": "Luke", "luk": "Luke",
	"jn": "John", "jhn": "John", "joh": "John",
	"rom": "Romans", "ro": "Romans",
	"cor": "Corinthians", "co": "Corinthians",
	"gal": "Galatians",
	"eph": "Ephesians",
	"phil": "Philippians", "php": "Philippians",
	"col": "Colossians",
	"thess": "Thessalonians", "th": "Thessalonians", "thes": "Thessalonians",
	"tim": "Timothy", "tm": "Timothy",
	"tit": "Titus",
	"philem": "Philemon", "phm": "Philemon",
	"heb": "Hebrews",
	"jas": "James", "jm": "James",
	"pet": "Peter", "pt": "Peter",
	"jud": "Jude",
	"rev": "Revelation", "re": "Revelation", "revelations": "Revelation",
}
