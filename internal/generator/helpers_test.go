package generator

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildTemplate writes a docx whose body holds one paragraph per entry of
// paragraphs and a single-cell table per entry of cells.
func buildTemplate(t *testing.T, paragraphs []string, cells []string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		body.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	if len(cells) > 0 {
		body.WriteString(`<w:tbl>`)
		for _, c := range cells {
			body.WriteString(`<w:tr><w:tc><w:p><w:r><w:t>` + c + `</w:t></w:r></w:p></w:tc></w:tr>`)
		}
		body.WriteString(`</w:tbl>`)
	}
	body.WriteString(`</w:body></w:document>`)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(body.String()))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// writeScript installs an executable shell script standing in for the
// converter. Arguments follow soffice: $5 is the outdir, $6 the source file.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "converter.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

const copyScript = `cp "$6" "$5/$(basename "$6" .docx).pdf"`

func assertEmptyDir(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.Empty(t, names, "work dir should hold no residue")
}
