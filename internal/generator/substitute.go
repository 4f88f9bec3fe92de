package generator

import (
	"sort"
	"strings"

	"certdocs/internal/docx"
	"certdocs/internal/model"
)

// Substitute replaces every {{key}} in doc with its value from fields and
// returns the number of placeholders replaced.
//
// Replacement works run by run: a placeholder whose characters are split
// across several runs is not matched. Values are inserted verbatim and are
// never themselves scanned for placeholders.
func Substitute(doc *docx.Document, fields model.FieldMap) int {
	if len(fields) == 0 {
		return 0
	}
	s := newSubstitution(fields)
	for _, p := range doc.Paragraphs {
		s.paragraph(p)
	}
	s.tables(doc.Tables)
	return s.count
}

type substitution struct {
	patterns []string
	replacer *strings.Replacer
	count    int
}

func newSubstitution(fields model.FieldMap) *substitution {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := &substitution{patterns: make([]string, 0, len(keys))}
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pattern := placeholder(k)
		s.patterns = append(s.patterns, pattern)
		pairs = append(pairs, pattern, fields[k])
	}
	s.replacer = strings.NewReplacer(pairs...)
	return s
}

func (s *substitution) paragraph(p *docx.Paragraph) {
	for _, r := range p.Runs {
		if !strings.Contains(r.Text, "{{") {
			continue
		}
		n := 0
		for _, pattern := range s.patterns {
			n += strings.Count(r.Text, pattern)
		}
		if n == 0 {
			continue
		}
		r.Text = s.replacer.Replace(r.Text)
		s.count += n
	}
}

func (s *substitution) tables(tables []*docx.Table) {
	for _, tbl := range tables {
		for _, row := range tbl.Rows {
			for _, cell := range row.Cells {
				for _, p := range cell.Paragraphs {
					s.paragraph(p)
				}
				s.tables(cell.Tables)
			}
		}
	}
}

func placeholder(key string) string {
	return "{{" + key + "}}"
}
