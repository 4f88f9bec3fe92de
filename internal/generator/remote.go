package generator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"certdocs/internal/logging"
	"certdocs/internal/model"
)

const scratchDeleteTimeout = 30 * time.Second

// TemplateAPI is the remote document service: a working copy of a template
// is created, edited with replace-all requests, exported and deleted.
type TemplateAPI interface {
	Copy(ctx context.Context, templateID, name string) (string, error)
	ReplaceAll(ctx context.Context, documentID string, fields model.FieldMap) error
	ExportPDF(ctx context.Context, documentID string) ([]byte, error)
	Delete(ctx context.Context, documentID string) error
}

// RemoteGenerator produces PDFs from remotely hosted templates.
type RemoteGenerator struct {
	api TemplateAPI
	log logging.Logger
	now func() time.Time
}

func NewRemote(api TemplateAPI, log logging.Logger) *RemoteGenerator {
	return &RemoteGenerator{api: api, log: log, now: time.Now}
}

// Generate copies templateRef, applies fields, exports the copy as PDF and
// deletes it. The copy is deleted on every path once it exists; a failed
// delete is logged and does not change the result.
func (g *RemoteGenerator) Generate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error) {
	ctx, span := otel.Tracer("certdocs/generator").Start(ctx, "generator.remote")
	defer span.End()
	span.SetAttributes(attribute.String("template", templateRef))

	name := fmt.Sprintf("Documento generado - %d", g.now().UnixMilli())
	docID, err := g.api.Copy(ctx, templateRef, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer g.deleteScratch(ctx, docID)

	if err := g.api.ReplaceAll(ctx, docID, fields); err != nil {
		span.RecordError(err)
		return nil, err
	}

	pdf, err := g.api.ExportPDF(ctx, docID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	g.log.Info(ctx, "remote document generated", "template", templateRef, "fields", len(fields), "bytes", len(pdf))
	return pdf, nil
}

func (g *RemoteGenerator) deleteScratch(ctx context.Context, docID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), scratchDeleteTimeout)
	defer cancel()
	if err := g.api.Delete(ctx, docID); err != nil {
		g.log.Warn(ctx, "remote scratch copy not deleted", "document_id", docID, "error", err)
	}
}
