package generator

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certdocs/internal/apperror"
	"certdocs/internal/docx"
	"certdocs/internal/logging"
	"certdocs/internal/model"
)

func TestLocalGenerator_Generate(t *testing.T) {
	// The copy script hands back the filled docx, so the output can be
	// inspected as a document.
	conv, workDir := newTestConverter(t, copyScript, 5*time.Second, 1)
	templates := fstest.MapFS{
		"form.docx": {Data: buildTemplate(t,
			[]string{"Conductor: {{nombre}}, RUT: {{rut}}"},
			[]string{"Licencia {{licencia}}"})},
	}
	gen := NewLocal(templates, conv, logging.Nop())

	out, err := gen.Generate(context.Background(), "form.docx", model.FieldMap{
		"nombre":   "Ana",
		"rut":      "12345678-9",
		"licencia": "A2 & A4",
		"unused":   "x",
	})
	require.NoError(t, err)

	doc, err := docx.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "Conductor: Ana, RUT: 12345678-9\nLicencia A2 & A4", doc.Text())
	assert.NotContains(t, doc.Text(), "{{")
	assertEmptyDir(t, workDir)
}

func TestLocalGenerator_Errors(t *testing.T) {
	conv, workDir := newTestConverter(t, "exit 1", 5*time.Second, 1)
	templates := fstest.MapFS{
		"broken.docx":  {Data: []byte("not a zip")},
		"form.docx":    {Data: buildTemplate(t, []string{"{{nombre}}"}, nil)},
		"legacy/a.doc": {Data: []byte("x")},
	}
	gen := NewLocal(templates, conv, logging.Nop())

	tests := []struct {
		name    string
		ref     string
		wantMsg string
	}{
		{"missing template", "absent.docx", "load template absent.docx"},
		{"unparseable template", "broken.docx", "parse template broken.docx"},
		{"template is a directory", "legacy", "parse template legacy"},
		{"converter exits 1", "form.docx", "converter exited with code 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gen.Generate(context.Background(), tt.ref, model.FieldMap{"nombre": "Ana"})
			assert.ErrorIs(t, err, apperror.ErrConversion)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assertEmptyDir(t, workDir)
		})
	}
}

func TestTemplates_Bundled(t *testing.T) {
	tfs := Templates("")
	for _, kind := range []model.Kind{model.KindMedicalForm, model.KindPsychologicalForm} {
		data, err := fs.ReadFile(tfs, LocalTemplateRef(kind))
		require.NoError(t, err, kind)

		doc, err := docx.Parse(data)
		require.NoError(t, err, kind)
		assert.Contains(t, doc.Text(), "Conductor: {{nombre}}, RUT: {{rut}}")
	}
}

func TestParseStrategy(t *testing.T) {
	s, ok := ParseStrategy("local")
	assert.True(t, ok)
	assert.Equal(t, StrategyLocal, s)

	s, ok = ParseStrategy("remote")
	assert.True(t, ok)
	assert.Equal(t, StrategyRemote, s)

	_, ok = ParseStrategy("fax")
	assert.False(t, ok)
}
