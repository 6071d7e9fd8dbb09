package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLang is the language every lookup falls back to.
const DefaultLang = "EN"

// NormalizeLang reduces a locale ("de", "DE", "de-AT") to its upper-case base
// language code. It returns "" when nothing usable is left.
func NormalizeLang(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if tag, err := language.Parse(s); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			return strings.ToUpper(base.String())
		}
	}
	// well-formed but unregistered codes still carry a usable prefix
	if len(s) >= 2 && isASCIILetter(s[0]) && isASCIILetter(s[1]) && (len(s) == 2 || s[2] == '-' || s[2] == '_') {
		return strings.ToUpper(s[:2])
	}
	return ""
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Languages picks a request language out of the supported set.
type Languages struct {
	codes   []string
	matcher language.Matcher
}

// NewLanguages builds a chooser; def is always supported and wins ties.
func NewLanguages(def string, supported []string) Languages {
	def = NormalizeLang(def)
	if def == "" {
		def = DefaultLang
	}
	codes := []string{def}
	seen := map[string]struct{}{def: {}}
	for _, s := range supported {
		c := NormalizeLang(s)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		codes = append(codes, c)
	}
	tags := make([]language.Tag, 0, len(codes))
	for _, c := range codes {
		tags = append(tags, language.Make(strings.ToLower(c)))
	}
	return Languages{codes: codes, matcher: language.NewMatcher(tags)}
}

func (l Languages) Default() string { return l.codes[0] }

func (l Languages) Supported() []string {
	out := make([]string, len(l.codes))
	copy(out, l.codes)
	return out
}

// Pick honours an explicit ?lang= value as-is (lookups fall back per field),
// otherwise negotiates the Accept-Language header.
func (l Languages) Pick(explicit, acceptLanguage string) string {
	if c := NormalizeLang(explicit); c != "" {
		return c
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return l.Default()
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(l.codes) {
		return l.Default()
	}
	return l.codes[idx]
}
