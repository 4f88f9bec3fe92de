package generator

import (
	"context"
	"fmt"
	"io/fs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"certdocs/internal/apperror"
	"certdocs/internal/docx"
	"certdocs/internal/logging"
	"certdocs/internal/model"
)

// LocalGenerator fills docx templates read from an fs.FS and converts them
// to PDF with a Converter.
type LocalGenerator struct {
	templates fs.FS
	conv      *Converter
	log       logging.Logger
}

func NewLocal(templates fs.FS, conv *Converter, log logging.Logger) *LocalGenerator {
	return &LocalGenerator{templates: templates, conv: conv, log: log}
}

// Generate loads templateRef (a path inside the template FS), substitutes
// fields and converts the result.
func (g *LocalGenerator) Generate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error) {
	const op = "generator.Local"
	ctx, span := otel.Tracer("certdocs/generator").Start(ctx, "generator.local")
	defer span.End()
	span.SetAttributes(attribute.String("template", templateRef))

	f, err := g.templates.Open(templateRef)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Conversion(op, fmt.Errorf("load template %s: %w", templateRef, err))
	}
	doc, err := docx.Open(f)
	f.Close()
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Conversion(op, fmt.Errorf("parse template %s: %w", templateRef, err))
	}

	n := Substitute(doc, fields)
	span.SetAttributes(attribute.Int("placeholders.replaced", n))

	src, err := doc.Bytes()
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Conversion(op, fmt.Errorf("serialize template %s: %w", templateRef, err))
	}

	pdf, err := g.conv.Convert(ctx, src)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	g.log.Info(ctx, "local document generated", "template", templateRef, "replaced", n, "bytes", len(pdf))
	return pdf, nil
}
