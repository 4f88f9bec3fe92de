// Package docx reads the text runs of a WordprocessingML package and writes
// edited run text back without touching the rest of the markup.
//
// Only the character data of w:t elements is rewritten. Every other byte of
// word/document.xml, and every other part of the package, is carried over
// as-is, so formatting, relationships and embedded media survive a round trip.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	wordNS       = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	documentPart = "word/document.xml"
)

// ErrNoDocumentPart is returned when the package has no word/document.xml.
var ErrNoDocumentPart = errors.New("docx: missing " + documentPart)

// Run is the text of a single w:t element. Text may be edited in place;
// Bytes writes the new value back.
type Run struct {
	Text string

	orig        string
	start, end  int64
	selfClosing bool
}

type Paragraph struct {
	Runs []*Run
}

// Text concatenates the runs of the paragraph.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

type Cell struct {
	Paragraphs []*Paragraph
	Tables     []*Table
}

type Row struct {
	Cells []*Cell
}

type Table struct {
	Rows []*Row
}

// Document is the body of a .docx package: top-level paragraphs and tables.
// Tables nest through cells.
type Document struct {
	Paragraphs []*Paragraph
	Tables     []*Table

	pkg  []byte
	body []byte
	runs []*Run
}

// Open reads a .docx package from r.
func Open(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("docx: read package: %w", err)
	}
	return Parse(data)
}

// Parse decodes a .docx package held in memory.
func Parse(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("docx: open package: %w", err)
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("docx: open %s: %w", documentPart, err)
		}
		body, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("docx: read %s: %w", documentPart, err)
		}
		break
	}
	if body == nil {
		return nil, ErrNoDocumentPart
	}

	doc := &Document{pkg: data, body: body}
	if err := doc.decode(); err != nil {
		return nil, err
	}
	return doc, nil
}

type frame struct {
	table *Table
	row   *Row
	cell  *Cell
	para  *Paragraph
}

func (d *Document) decode() error {
	dec := xml.NewDecoder(bytes.NewReader(d.body))

	var stack []frame
	var cur *Run
	var text strings.Builder

	nearest := func(match func(frame) bool) (frame, bool) {
		for i := len(stack) - 1; i >= 0; i-- {
			if match(stack[i]) {
				return stack[i], true
			}
		}
		return frame{}, false
	}

	for {
		before := dec.InputOffset()
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("docx: decode %s: %w", documentPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tbl := &Table{}
				if f, ok := nearest(func(f frame) bool { return f.cell != nil }); ok {
					f.cell.Tables = append(f.cell.Tables, tbl)
				} else {
					d.Tables = append(d.Tables, tbl)
				}
				stack = append(stack, frame{table: tbl})
			case "tr":
				row := &Row{}
				if f, ok := nearest(func(f frame) bool { return f.table != nil }); ok {
					f.table.Rows = append(f.table.Rows, row)
				}
				stack = append(stack, frame{row: row})
			case "tc":
				cell := &Cell{}
				if f, ok := nearest(func(f frame) bool { return f.row != nil }); ok {
					f.row.Cells = append(f.row.Cells, cell)
				}
				stack = append(stack, frame{cell: cell})
			case "p":
				p := &Paragraph{}
				if f, ok := nearest(func(f frame) bool { return f.cell != nil }); ok {
					f.cell.Paragraphs = append(f.cell.Paragraphs, p)
				} else {
					d.Paragraphs = append(d.Paragraphs, p)
				}
				stack = append(stack, frame{para: p})
			case "t":
				start := dec.InputOffset()
				cur = &Run{start: start, selfClosing: bytes.HasSuffix(d.body[:start], []byte("/>"))}
				text.Reset()
			}
		case xml.CharData:
			if cur != nil {
				text.Write(t)
			}
		case xml.EndElement:
			if t.Name.Space != wordNS {
				continue
			}
			switch t.Name.Local {
			case "tbl", "tr", "tc", "p":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			case "t":
				if cur == nil {
					continue
				}
				cur.end = before
				if cur.selfClosing {
					cur.end = cur.start
				}
				cur.orig = text.String()
				cur.Text = cur.orig
				if f, ok := nearest(func(f frame) bool { return f.para != nil }); ok {
					f.para.Runs = append(f.para.Runs, cur)
					d.runs = append(d.runs, cur)
				}
				cur = nil
			}
		}
	}
	return nil
}

// Text returns the document text, one line per paragraph, with table
// paragraphs following the body paragraphs.
func (d *Document) Text() string {
	var lines []string
	var walkTables func([]*Table)
	walkTables = func(tables []*Table) {
		for _, tbl := range tables {
			for _, row := range tbl.Rows {
				for _, cell := range row.Cells {
					for _, p := range cell.Paragraphs {
						lines = append(lines, p.Text())
					}
					walkTables(cell.Tables)
				}
			}
		}
	}
	for _, p := range d.Paragraphs {
		lines = append(lines, p.Text())
	}
	walkTables(d.Tables)
	return strings.Join(lines, "\n")
}

// Bytes serializes the package with the current run text.
func (d *Document) Bytes() ([]byte, error) {
	body, err := d.renderBody()
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(d.pkg), int64(len(d.pkg)))
	if err != nil {
		return nil, fmt.Errorf("docx: reopen package: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("docx: copy %s: %w", f.Name, err)
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("docx: create %s: %w", f.Name, err)
		}
		if _, err := w.Write(body); err != nil {
			return nil, fmt.Errorf("docx: write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docx: close package: %w", err)
	}
	return buf.Bytes(), nil
}

func (d *Document) renderBody() ([]byte, error) {
	var out bytes.Buffer
	out.Grow(len(d.body))
	var last int64
	for _, r := range d.runs {
		if r.Text == r.orig {
			continue
		}
		if r.selfClosing {
			return nil, fmt.Errorf("docx: cannot set text of empty element at offset %d", r.start)
		}
		out.Write(d.body[last:r.start])
		if err := xml.EscapeText(&out, []byte(r.Text)); err != nil {
			return nil, fmt.Errorf("docx: escape run text: %w", err)
		}
		last = r.end
	}
	out.Write(d.body[last:])
	return out.Bytes(), nil
}
