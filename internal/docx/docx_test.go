package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBody = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Conductor: {{nombre}}, </w:t></w:r><w:r><w:t>RUT: {{rut}}</w:t></w:r></w:p>
<w:p><w:r><w:t/></w:r></w:p>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>Fecha</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>{{fecha}}</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>inner {{nombre}}</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:tc></w:tr>
</w:tbl>
<w:sectPr/>
</w:body>
</w:document>`

// buildDOCX writes a minimal package with the given document part and a
// media file that must survive rewriting.
func buildDOCX(t *testing.T, body string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, _ = ct.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))

	if body != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, _ = doc.Write([]byte(body))
	}

	media, err := w.Create("word/media/image1.png")
	require.NoError(t, err)
	_, _ = media.Write([]byte{0x89, 'P', 'N', 'G'})

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func readPart(t *testing.T, pkg []byte, name string) []byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name == name {
			rc, err := f.Open()
			require.NoError(t, err)
			defer rc.Close()
			b, err := io.ReadAll(rc)
			require.NoError(t, err)
			return b
		}
	}
	t.Fatalf("part %s not found", name)
	return nil
}

func TestParse_Structure(t *testing.T) {
	doc, err := Parse(buildDOCX(t, testBody))
	require.NoError(t, err)

	require.Len(t, doc.Paragraphs, 2)
	require.Len(t, doc.Paragraphs[0].Runs, 2)
	assert.Equal(t, "Conductor: {{nombre}}, ", doc.Paragraphs[0].Runs[0].Text)
	assert.Equal(t, "RUT: {{rut}}", doc.Paragraphs[0].Runs[1].Text)
	assert.Equal(t, "", doc.Paragraphs[1].Text())

	require.Len(t, doc.Tables, 1)
	row := doc.Tables[0].Rows[0]
	require.Len(t, row.Cells, 2)
	assert.Equal(t, "Fecha", row.Cells[0].Paragraphs[0].Text())
	assert.Equal(t, "{{fecha}}", row.Cells[1].Paragraphs[0].Text())

	require.Len(t, row.Cells[1].Tables, 1)
	assert.Equal(t, "inner {{nombre}}", row.Cells[1].Tables[0].Rows[0].Cells[0].Paragraphs[0].Text())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("not a zip"))
	assert.Error(t, err)

	_, err = Parse(buildDOCX(t, ""))
	assert.ErrorIs(t, err, ErrNoDocumentPart)

	_, err = Parse(buildDOCX(t, "<w:document><w:body>"))
	assert.Error(t, err)
}

func TestBytes_Unchanged(t *testing.T) {
	pkg := buildDOCX(t, testBody)
	doc, err := Parse(pkg)
	require.NoError(t, err)

	out, err := doc.Bytes()
	require.NoError(t, err)
	assert.Equal(t, testBody, string(readPart(t, out, documentPart)))
}

func TestBytes_RewritesOnlyEditedRuns(t *testing.T) {
	doc, err := Parse(buildDOCX(t, testBody))
	require.NoError(t, err)

	doc.Paragraphs[0].Runs[0].Text = "Conductor: Ana & <Co>, "
	doc.Tables[0].Rows[0].Cells[1].Paragraphs[0].Runs[0].Text = "01-02-2024"

	out, err := doc.Bytes()
	require.NoError(t, err)

	body := string(readPart(t, out, documentPart))
	assert.Contains(t, body, `<w:t xml:space="preserve">Conductor: Ana &amp; &lt;Co&gt;, </w:t>`)
	assert.Contains(t, body, `<w:t>01-02-2024</w:t>`)
	assert.Contains(t, body, `<w:rPr><w:b/></w:rPr>`)
	assert.Contains(t, body, `<w:t>RUT: {{rut}}</w:t>`)

	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, readPart(t, out, "word/media/image1.png"))

	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "Conductor: Ana & <Co>, RUT: {{rut}}", again.Paragraphs[0].Text())
}

func TestBytes_SelfClosingRunCannotBeSet(t *testing.T) {
	doc, err := Parse(buildDOCX(t, testBody))
	require.NoError(t, err)

	doc.Paragraphs[1].Runs[0].Text = "x"
	_, err = doc.Bytes()
	assert.ErrorContains(t, err, "empty element")
}

func TestOpen_ReadFailure(t *testing.T) {
	_, err := Open(iotest.ErrReader(errors.New("disk gone")))
	assert.ErrorContains(t, err, "docx: read package: disk gone")
}

func TestText(t *testing.T) {
	doc, err := Open(bytes.NewReader(buildDOCX(t, testBody)))
	require.NoError(t, err)
	assert.Equal(t,
		"Conductor: {{nombre}}, RUT: {{rut}}\n\nFecha\n{{fecha}}\ninner {{nombre}}",
		doc.Text())
}
