package handler

import (
	"fmt"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"

	"certdocs/internal/logging"
	"certdocs/internal/model"
	"certdocs/internal/service"
)

// ArtifactList is the list response for a subject.
type ArtifactList struct {
	Items []model.Artifact `json:"items"`
	Total int              `json:"total"`
}

// UploadArtifact godoc
// @Summary Upload a PDF artifact
// @Tags artifacts
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "PDF file"
// @Param kind formData string true "Document kind"
// @Param subject_id formData int true "Subject id"
// @Param actor_id formData int true "Actor id"
// @Success 201 {object} model.Artifact
// @Failure 400 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security BearerAuth
// @Router /artifacts [post]
func UploadArtifact(svc service.ArtifactService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		kind, err := model.ParseKind(c.FormValue("kind"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", err.Error())
		}
		subjectID, ok := positiveID(c.FormValue("subject_id"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject_id")
		}
		actorID, ok := positiveID(c.FormValue("actor_id"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACTOR_ID", "invalid actor_id")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		a, err := svc.Upload(c.UserContext(), f, ct, fh.Size, kind, subjectID, actorID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

// GetArtifact godoc
// @Summary Download an artifact
// @Tags artifacts
// @Produce application/pdf
// @Param id path int true "Artifact id"
// @Success 200 {file} binary
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /artifacts/{id} [get]
func GetArtifact(svc service.ArtifactService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := positiveID(c.Params("id"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		a, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		c.Set(fiber.HeaderContentType, a.ContentType)
		c.Set(fiber.HeaderContentDisposition, contentDisposition("inline", a.Kind.DisplayName()+".pdf"))
		return c.Send(a.Payload)
	}
}

// ArtifactLink godoc
// @Summary Presign a direct download URL for an artifact
// @Tags artifacts
// @Produce json
// @Param id path int true "Artifact id"
// @Param expires_in query string false "Link lifetime as a Go duration, e.g. 15m"
// @Success 200 {object} model.DownloadLink
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /artifacts/{id}/link [get]
func ArtifactLink(svc service.ArtifactService, defaultExpiry time.Duration, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := positiveID(c.Params("id"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		expiry := defaultExpiry
		if v := c.Query("expires_in"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_EXPIRY", "expires_in must be a duration such as 15m")
			}
			expiry = d
		}
		link, err := svc.DownloadLink(c.UserContext(), id, expiry)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(link)
	}
}

// ArtifactExists godoc
// @Summary Check whether an artifact exists
// @Tags artifacts
// @Produce json
// @Param kind path string true "Document kind"
// @Param subjectId path int true "Subject id"
// @Param actorId path int true "Actor id"
// @Success 200 {object} map[string]bool
// @Security BearerAuth
// @Router /artifacts/{kind}/{subjectId}/{actorId}/exists [get]
func ArtifactExists(svc service.ArtifactService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, err := model.ParseKind(c.Params("kind"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", err.Error())
		}
		subjectID, ok := positiveID(c.Params("subjectId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject id")
		}
		actorID, ok := positiveID(c.Params("actorId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACTOR_ID", "invalid actor id")
		}
		exists, err := svc.Exists(c.UserContext(), subjectID, actorID, kind)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"exists": exists})
	}
}

// DeleteArtifacts godoc
// @Summary Delete every artifact of a subject by an actor
// @Tags artifacts
// @Produce json
// @Param subjectId path int true "Subject id"
// @Param actorId path int true "Actor id"
// @Success 200 {object} map[string]int64
// @Security BearerAuth
// @Router /artifacts/{subjectId}/{actorId} [delete]
func DeleteArtifacts(svc service.ArtifactService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := positiveID(c.Params("subjectId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject id")
		}
		actorID, ok := positiveID(c.Params("actorId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ACTOR_ID", "invalid actor id")
		}
		n, err := svc.DeleteBy(c.UserContext(), subjectID, actorID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(fiber.Map{"deleted": n})
	}
}

// ListSubjectArtifacts godoc
// @Summary List a subject's artifacts
// @Tags subjects
// @Produce json
// @Param subjectId path int true "Subject id"
// @Success 200 {object} ArtifactList
// @Security BearerAuth
// @Router /subjects/{subjectId}/artifacts [get]
func ListSubjectArtifacts(svc service.ArtifactService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := positiveID(c.Params("subjectId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject id")
		}
		items, err := svc.ListBySubject(c.UserContext(), subjectID)
		if err != nil {
			return respondError(c, log, err)
		}
		if items == nil {
			items = []model.Artifact{}
		}
		return c.JSON(ArtifactList{Items: items, Total: len(items)})
	}
}

// LatestSubjectArtifact godoc
// @Summary Most recent artifact of a subject
// @Tags subjects
// @Produce json
// @Param subjectId path int true "Subject id"
// @Success 200 {object} model.Artifact
// @Failure 404 {object} errorPayload
// @Security BearerAuth
// @Router /subjects/{subjectId}/artifacts/latest [get]
func LatestSubjectArtifact(svc service.ArtifactService, log logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subjectID, ok := positiveID(c.Params("subjectId"))
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid subject id")
		}
		a, err := svc.FindBySubject(c.UserContext(), subjectID)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(a)
	}
}

// contentDisposition builds a header value that keeps non-ASCII names intact.
func contentDisposition(disposition, filename string) string {
	return fmt.Sprintf(`%s; filename="%s"; filename*=UTF-8''%s`, disposition, filename, url.PathEscape(filename))
}
