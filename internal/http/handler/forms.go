package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"certdocs/internal/generator"
	"certdocs/internal/http/middleware"
	"certdocs/internal/logging"
	"certdocs/internal/model"
	"certdocs/internal/pdfstamp"
	"certdocs/internal/service"
)

// maxPartSize bounds one in-memory multipart file.
var maxPartSize int64 = 32 << 20

var (
	errPartMissing  = errors.New("multipart file missing")
	errPartTooLarge = errors.New("multipart file too large")
)

// ArtifactIDHeader carries the id of the artifact stored by form generation.
const ArtifactIDHeader = "X-Artifact-Id"

// GenerateForm godoc
// @Summary Generate, optionally sign, and store a form
// @Tags forms
// @Accept multipart/form-data
// @Produce application/pdf
// @Param kind path string true "medical_form or psychological_form"
// @Param strategy query string false "remote or local"
// @Param fields formData string true "JSON object of placeholder values"
// @Param subject_id formData int true "Subject id"
// @Param actor_id formData int false "Actor id, defaults to the caller"
// @Param signature formData file false "Signature image (PNG or JPEG)"
// @Success 201 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Security BearerAuth
// @Router /forms/{kind} [post]
func GenerateForm(svc service.FormService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := model.ParseKind(c.Params("kind"))
		if err != nil || kind.Remote() {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "kind must be a generated form")
		}
		id, _ := middleware.IdentityFrom(c)
		if !id.Role.CanAuthor(kind) {
			return writeError(c, fiber.StatusForbidden, "FORBIDDEN", fmt.Sprintf("role %s may not author %s", id.Role, kind))
		}

		var strategy generator.Strategy
		if s := c.Query("strategy"); s != "" {
			var ok bool
			if strategy, ok = generator.ParseStrategy(s); !ok {
				return writeError(c, fiber.StatusBadRequest, "INVALID_STRATEGY", "strategy must be remote or local")
			}
		}

		var fields model.FieldMap
		if err := json.Unmarshal([]byte(c.FormValue("fields")), &fields); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_FIELDS", "fields must be a JSON object of strings")
		}
		subjectID, ok := positiveID(c.FormValue("subject_id"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject_id")
		}
		actorID := id.UserID
		if v := c.FormValue("actor_id"); v != "" {
			if actorID, ok = positiveID(v); !ok {
				return writeError(c, fiber.StatusBadRequest, "INVALID_ACTOR_ID", "invalid actor_id")
			}
		}

		var signature []byte
		if fh, err := c.FormFile("signature"); err == nil {
			if signature, err = readPart(fh); err != nil {
				return partError(c, "signature", err)
			}
		}

		res, err := svc.Generate(c.UserContext(), service.FormRequest{
			Kind:      kind,
			Strategy:  strategy,
			Fields:    fields,
			SubjectID: subjectID,
			ActorID:   actorID,
			Signature: signature,
		})
		if err != nil {
			return respondError(c, log, err)
		}
		c.Set(ArtifactIDHeader, strconv.FormatInt(res.Artifact.ID, 10))
		c.Set(fiber.HeaderContentType, model.ContentTypePDF)
		c.Set(fiber.HeaderContentDisposition, contentDisposition("inline", kind.DisplayName()+".pdf"))
		return c.Status(fiber.StatusCreated).Send(res.PDF)
	}
}

// StampPDF godoc
// @Summary Stamp an image onto a PDF page
// @Description Position comes from a named preset or from explicit page, x, y, width and height in points.
// @Tags forms
// @Accept multipart/form-data
// @Produce application/pdf
// @Param pdf formData file true "PDF document"
// @Param image formData file true "PNG or JPEG image"
// @Param preset formData string false "medic_signature, psychologist_signature or psychometric_qr"
// @Param page formData string false "first, last or a 1-based page number"
// @Param x formData number false "Lower-left x in points"
// @Param y formData number false "Lower-left y in points"
// @Param width formData number false "Box width in points"
// @Param height formData number false "Box height in points"
// @Success 200 {file} binary
// @Failure 400 {object} errorPayload
// @Failure 422 {object} errorPayload
// @Security BearerAuth
// @Router /pdf/stamp [post]
func StampPDF(svc service.FormService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pdf, err := formFile(c, "pdf")
		if err != nil {
			return partError(c, "pdf", err)
		}
		image, err := formFile(c, "image")
		if err != nil {
			return partError(c, "image", err)
		}

		var out []byte
		if preset := c.FormValue("preset"); preset != "" {
			out, err = svc.StampPreset(c.UserContext(), pdf, preset, image)
		} else {
			ov, perr := overlayFromForm(c, image)
			if perr != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_OVERLAY", perr.Error())
			}
			out, err = svc.StampImage(c.UserContext(), pdf, ov)
		}
		if err != nil {
			return respondError(c, log, err)
		}
		c.Set(fiber.HeaderContentType, model.ContentTypePDF)
		return c.Send(out)
	}
}

func overlayFromForm(c *fiber.Ctx, image []byte) (pdfstamp.Overlay, error) {
	page, err := pdfstamp.ParsePage(c.FormValue("page", "first"))
	if err != nil {
		return pdfstamp.Overlay{}, err
	}
	ov := pdfstamp.Overlay{Image: image, Page: page}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"x", &ov.X}, {"y", &ov.Y}, {"width", &ov.Width}, {"height", &ov.Height},
	} {
		v, err := strconv.ParseFloat(c.FormValue(f.name), 64)
		if err != nil {
			return pdfstamp.Overlay{}, fmt.Errorf("%s must be a number", f.name)
		}
		*f.dst = v
	}
	return ov, nil
}

func formFile(c *fiber.Ctx, name string) ([]byte, error) {
	fh, err := c.FormFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errPartMissing, err)
	}
	return readPart(fh)
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxPartSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxPartSize {
		return nil, errPartTooLarge
	}
	return data, nil
}

func partError(c *fiber.Ctx, name string, err error) error {
	switch {
	case errors.Is(err, errPartTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE",
			fmt.Sprintf("%s exceeds %d bytes", name, maxPartSize))
	case errors.Is(err, errPartMissing):
		return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", name+" is required")
	default:
		return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot read "+name)
	}
}
