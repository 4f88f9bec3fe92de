// Package pdfstamp places images on existing PDF pages.
package pdfstamp

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"certdocs/internal/apperror"
)

var disableConfigDir sync.Once

// Annotator stamps overlays onto PDFs. It holds no per-document state and is
// safe for concurrent use.
type Annotator struct{}

func New() *Annotator {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Annotator{}
}

func newConf() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages of pdf.
func (a *Annotator) PageCount(pdf []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(pdf), newConf())
	if err != nil {
		return 0, apperror.MalformedDocument("pdfstamp.PageCount", err)
	}
	return n, nil
}

// Stamp returns a copy of pdf with ov drawn over the content of the selected
// page. Other pages and the page count are unchanged. The image is scaled up
// or down to fit the overlay box, keeping its aspect ratio.
func (a *Annotator) Stamp(ctx context.Context, pdf []byte, ov Overlay) ([]byte, error) {
	const op = "pdfstamp.Stamp"
	_, span := otel.Tracer("certdocs/pdfstamp").Start(ctx, "pdfstamp.stamp")
	defer span.End()

	if len(ov.Image) == 0 {
		return nil, apperror.Validation(op, "overlay image is empty")
	}
	if ov.Width <= 0 || ov.Height <= 0 {
		return nil, apperror.Validation(op, "overlay box must have a positive width and height")
	}

	count, err := a.PageCount(pdf)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	page := ov.Page.resolve(count)
	span.SetAttributes(attribute.Int("pdf.pages", count), attribute.Int("pdf.page", page))
	if page < 1 || page > count {
		return nil, apperror.PageNotFound(op, page, count)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(ov.Image))
	if err != nil {
		return nil, apperror.Validation(op, "overlay image must be PNG or JPEG")
	}
	scale := fitScale(float64(cfg.Width), float64(cfg.Height), ov.Width, ov.Height)

	desc := fmt.Sprintf("pos:bl, off:%s %s, scalefactor:%s abs, rot:0",
		formatFloat(ov.X), formatFloat(ov.Y), formatFloat(scale))
	wm, err := api.ImageWatermarkForReader(bytes.NewReader(ov.Image), desc, true, false, types.POINTS)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.Validation(op, fmt.Sprintf("build overlay: %v", err))
	}

	var out bytes.Buffer
	if err := api.AddWatermarks(bytes.NewReader(pdf), &out, []string{strconv.Itoa(page)}, wm, newConf()); err != nil {
		span.RecordError(err)
		return nil, apperror.MalformedDocument(op, err)
	}
	return out.Bytes(), nil
}

// fitScale is the largest factor that fits a w x h image inside a
// boxW x boxH box.
func fitScale(w, h, boxW, boxH float64) float64 {
	if w <= 0 || h <= 0 {
		return 1
	}
	return math.Min(boxW/w, boxH/h)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
