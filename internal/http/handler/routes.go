package handler

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"certdocs/internal/auth"
	"certdocs/internal/http/middleware"
	"certdocs/internal/logging"
	"certdocs/internal/service"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	DB         *sql.DB
	Artifacts  service.ArtifactService
	Forms      service.FormService
	Bundles    service.BundleService
	Verifier   *auth.Verifier
	CookieName string
	LinkExpiry time.Duration
	Log        logging.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Every
// document route authenticates the caller and checks the capability its
// operation needs.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())

	authn := middleware.Authenticate(d.Verifier, d.CookieName)
	can := middleware.Require

	app.Post("/forms/:kind", authn, can(auth.CapGenerateForms), GenerateForm(d.Forms, d.Log))
	app.Post("/pdf/stamp", authn, can(auth.CapStamp), StampPDF(d.Forms, d.Log))

	app.Post("/artifacts", authn, can(auth.CapUpload), UploadArtifact(d.Artifacts, d.Log))
	app.Get("/artifacts/:id", authn, can(auth.CapRead), GetArtifact(d.Artifacts, d.Log))
	app.Get("/artifacts/:id/link", authn, can(auth.CapRead), ArtifactLink(d.Artifacts, d.LinkExpiry, d.Log))
	app.Get("/artifacts/:kind/:subjectId/:actorId/exists", authn, can(auth.CapRead), ArtifactExists(d.Artifacts, d.Log))
	app.Delete("/artifacts/:subjectId/:actorId", authn, can(auth.CapDelete), DeleteArtifacts(d.Artifacts, d.Log))

	app.Get("/subjects/:subjectId/artifacts", authn, can(auth.CapRead), ListSubjectArtifacts(d.Artifacts, d.Log))
	app.Get("/subjects/:subjectId/artifacts/latest", authn, can(auth.CapRead), LatestSubjectArtifact(d.Artifacts, d.Log))
	app.Get("/subjects/:subjectId/documents/:kind", authn, can(auth.CapRead), SiblingDocument(d.Bundles, d.Log))
	app.Get("/subjects/:subjectId/archive", authn, can(auth.CapDownloadBundle), SubjectArchive(d.Bundles, d.Log))
}

// HealthCheck godoc
// @Summary Readiness probe
// @Description Checks database connectivity.
// @Tags ops
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe godoc
// @Summary Liveness probe
// @Tags ops
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// positiveID parses a path or form value as a positive int64.
func positiveID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
