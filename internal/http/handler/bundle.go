package handler

import (
	"bufio"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"certdocs/internal/http/middleware"
	"certdocs/internal/logging"
	"certdocs/internal/model"
	"certdocs/internal/service"
)

// SiblingDocument godoc
// @Summary Fetch a document owned by the documents service
// @Tags subjects
// @Produce application/pdf
// @Param subjectId path int true "Subject id"
// @Param kind path string true "credential or psychometric_file"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Security BearerAuth
// @Router /subjects/{subjectId}/documents/{kind} [get]
func SiblingDocument(svc service.BundleService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := positiveID(c.Params("subjectId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject id")
		}
		kind, err := model.ParseKind(c.Params("kind"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", err.Error())
		}
		id, _ := middleware.IdentityFrom(c)

		doc, err := svc.FetchSibling(c.UserContext(), id.Token, kind, subjectID)
		if err != nil {
			return respondError(c, log, err)
		}
		ct := doc.ContentType
		if ct == "" {
			ct = model.ContentTypePDF
		}
		c.Set(fiber.HeaderContentType, ct)
		c.Set(fiber.HeaderContentDisposition, contentDisposition("inline", kind.DisplayName()+".pdf"))
		// fasthttp closes the body once it has been sent.
		return c.SendStream(doc.Body, int(doc.Size))
	}
}

// SubjectArchive godoc
// @Summary Download every document of a subject as a zip
// @Description Stored forms and documents-service files are streamed entry by entry.
// @Tags subjects
// @Produce application/zip
// @Param subjectId path int true "Subject id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Security BearerAuth
// @Router /subjects/{subjectId}/archive [get]
func SubjectArchive(svc service.BundleService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := positiveID(c.Params("subjectId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject id")
		}
		id, _ := middleware.IdentityFrom(c)
		ctx := c.UserContext()

		a, err := svc.ArchiveForSubject(ctx, id.Token, subjectID)
		if err != nil {
			return respondError(c, log, err)
		}

		c.Set(fiber.HeaderContentType, "application/zip")
		c.Set(fiber.HeaderContentDisposition, contentDisposition("attachment", fmt.Sprintf("documentos_%d.zip", subjectID)))
		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			defer a.Close()
			n, err := a.Stream(ctx, w)
			if err != nil {
				// Headers are gone; the client sees a truncated archive.
				log.Error(ctx, "archive stream failed", "subject_id", subjectID, "written", n, "err", err)
				return
			}
			log.Info(ctx, "archive streamed", "subject_id", subjectID, "entries", a.Len(), "bytes", n)
		})
		return nil
	}
}
