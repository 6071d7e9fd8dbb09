package catalog

import (
	"context"
	"errors"
	"io/fs"
	"path"
	"regexp"
	"strings"

	"visit_polzela/internal/domain"
)

const (
	descriptionsDir = "descriptions"
	sectionCount    = 3
	// NoDescription is served when neither the requested language nor English exists.
	NoDescription = "Description not available in the selected language."
)

var (
	langTagRe   = regexp.MustCompile(`^([A-Z]{2}):\s?(.*)$`)
	paragraphRe = regexp.MustCompile(`\n[ \t]*\n`)
)

// LoadDescription reads descriptions/<id>.txt and returns the block for lang
// (English fallback) split into display sections.
func (l *Loader) LoadDescription(ctx context.Context, id, lang string) (domain.Description, error) {
	lang = NormalizeLang(lang)
	if lang == "" {
		lang = DefaultLang
	}
	p := path.Join(descriptionsDir, id+".txt")
	if id == "" || strings.ContainsAny(id, `/\`) || !fs.ValidPath(p) {
		return domain.Description{}, domain.ErrNotFound
	}
	raw, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Description{}, domain.ErrNotFound
		}
		return domain.Description{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Description{}, err
	}

	blocks := parseDescriptionBlocks(string(raw))
	used := lang
	text, ok := blocks[lang]
	if !ok {
		text, ok = blocks[DefaultLang]
		used = DefaultLang
	}
	if !ok || strings.TrimSpace(text) == "" {
		return domain.Description{ID: id, Language: lang, Sections: []string{NoDescription}}, nil
	}
	return domain.Description{ID: id, Language: used, Sections: SplitSections(text, sectionCount)}, nil
}

// parseDescriptionBlocks groups lines under their "XX:" tag. Untagged lines
// continue the current block; text before the first tag is dropped. The first
// block of a language wins.
func parseDescriptionBlocks(text string) map[string]string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	blocks := map[string]*strings.Builder{}
	var cur *strings.Builder
	for _, line := range strings.Split(text, "\n") {
		if m := langTagRe.FindStringSubmatch(line); m != nil {
			if _, dup := blocks[m[1]]; dup {
				cur = nil
				continue
			}
			cur = &strings.Builder{}
			blocks[m[1]] = cur
			cur.WriteString(m[2])
			continue
		}
		if cur != nil {
			cur.WriteByte('\n')
			cur.WriteString(line)
		}
	}
	out := make(map[string]string, len(blocks))
	for k, b := range blocks {
		out[k] = strings.TrimSpace(b.String())
	}
	return out
}

// SplitSections splits text on blank lines and groups the paragraphs into at
// most n sections of ceil(len/n) paragraphs each.
func SplitSections(text string, n int) []string {
	var paras []string
	for _, p := range paragraphRe.Split(strings.ReplaceAll(text, "\r\n", "\n"), -1) {
		if p = strings.TrimSpace(p); p != "" {
			paras = append(paras, p)
		}
	}
	if len(paras) == 0 || n <= 0 {
		return nil
	}
	per := (len(paras) + n - 1) / n
	out := make([]string, 0, n)
	for i := 0; i < len(paras); i += per {
		end := i + per
		if end > len(paras) {
			end = len(paras)
		}
		out = append(out, strings.Join(paras[i:end], "\n\n"))
	}
	return out
}
