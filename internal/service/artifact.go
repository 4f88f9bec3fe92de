package service

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"certdocs/internal/apperror"
	"certdocs/internal/logging"
	"certdocs/internal/model"
	"certdocs/internal/repository"
	"certdocs/internal/storage"
)

var pdfMagic = []byte("%PDF-")

// maxLinkExpiry is the longest lifetime S3 signature v4 accepts.
const maxLinkExpiry = 7 * 24 * time.Hour

// ArtifactService stores generated and uploaded PDFs. Metadata lives in the
// repository and payloads in object storage.
type ArtifactService interface {
	// Save persists pdf for (subject, actor, kind). A second save for the same
	// key is rejected with a conflict error.
	Save(ctx context.Context, pdf []byte, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error)

	// Upload is Save for a client-supplied stream. contentType must be application/pdf.
	Upload(ctx context.Context, r io.Reader, contentType string, size int64, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error)

	Exists(ctx context.Context, subjectID, actorID int64, kind model.Kind) (bool, error)

	// Get returns the artifact with its payload loaded.
	Get(ctx context.Context, id int64) (*model.Artifact, error)

	// DownloadLink presigns a direct storage URL for the artifact's payload,
	// valid for expiry.
	DownloadLink(ctx context.Context, id int64, expiry time.Duration) (*model.DownloadLink, error)

	// FindBySubject returns the most recent artifact of the subject.
	FindBySubject(ctx context.Context, subjectID int64) (*model.Artifact, error)

	ListBySubject(ctx context.Context, subjectID int64) ([]model.Artifact, error)

	// DeleteBy removes every artifact of (subject, actor), payloads first.
	DeleteBy(ctx context.Context, subjectID, actorID int64) (int64, error)
}

type artifactService struct {
	store storage.Storage
	repo  repository.ArtifactRepository
	log   logging.Logger
	now   func() time.Time
}

func NewArtifactService(store storage.Storage, repo repository.ArtifactRepository, log logging.Logger) ArtifactService {
	return &artifactService{store: store, repo: repo, log: log, now: time.Now}
}

func (s *artifactService) Save(ctx context.Context, pdf []byte, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error) {
	const op = "artifact.Save"
	if !bytes.HasPrefix(pdf, pdfMagic) {
		return nil, apperror.Validation(op, "payload is not a PDF document")
	}
	return s.persist(ctx, op, bytes.NewReader(pdf), int64(len(pdf)), kind, subjectID, actorID)
}

func (s *artifactService) Upload(ctx context.Context, r io.Reader, contentType string, size int64, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error) {
	const op = "artifact.Upload"
	if r == nil {
		return nil, apperror.Validation(op, "file is required")
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil || mt != model.ContentTypePDF {
		return nil, apperror.Validation(op, "content type must be application/pdf")
	}
	br := bufio.NewReader(r)
	head, err := br.Peek(len(pdfMagic))
	if err != nil || !bytes.Equal(head, pdfMagic) {
		return nil, apperror.Validation(op, "file is not a PDF document")
	}
	return s.persist(ctx, op, br, size, kind, subjectID, actorID)
}

func (s *artifactService) persist(ctx context.Context, op string, r io.Reader, size int64, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error) {
	if err := validateKey(op, kind, subjectID, actorID); err != nil {
		return nil, err
	}
	if kind.Remote() {
		return nil, apperror.Validation(op, fmt.Sprintf("%s documents are kept by the documents service", kind))
	}

	exists, err := s.repo.Exists(ctx, subjectID, actorID, kind)
	if err != nil {
		return nil, fmt.Errorf("check existing artifact: %w", err)
	}
	if exists {
		return nil, conflict(op, kind, subjectID, actorID)
	}

	key := path.Join("artifacts", string(kind), strconv.FormatInt(subjectID, 10), uuid.New().String()+".pdf")
	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        size,
		ContentType: model.ContentTypePDF,
		Metadata: map[string]string{
			"subject-id": strconv.FormatInt(subjectID, 10),
			"actor-id":   strconv.FormatInt(actorID, 10),
			"kind":       string(kind),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	a := &model.Artifact{
		SubjectID:   subjectID,
		ActorID:     actorID,
		Kind:        kind,
		ContentType: model.ContentTypePDF,
		StoragePath: key,
		Size:        objInfo.Size,
		CreatedAt:   s.now().UTC(),
	}
	stored, err := s.repo.Create(ctx, a)
	if err != nil {
		// Rollback: delete the object from storage
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(op, kind, subjectID, actorID)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}
	s.log.Info(ctx, "artifact saved", "artifact_id", stored.ID, "kind", kind, "subject_id", subjectID, "actor_id", actorID, "size", stored.Size)
	return stored, nil
}

func (s *artifactService) Exists(ctx context.Context, subjectID, actorID int64, kind model.Kind) (bool, error) {
	if err := validateKey("artifact.Exists", kind, subjectID, actorID); err != nil {
		return false, err
	}
	return s.repo.Exists(ctx, subjectID, actorID, kind)
}

func (s *artifactService) Get(ctx context.Context, id int64) (*model.Artifact, error) {
	const op = "artifact.Get"
	if id <= 0 {
		return nil, apperror.Validation(op, "id must be positive")
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(op, "artifact not found")
		}
		return nil, err
	}

	rc, _, err := s.store.Get(ctx, a.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open payload: %w", err)
	}
	defer rc.Close()
	a.Payload, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return a, nil
}

func (s *artifactService) DownloadLink(ctx context.Context, id int64, expiry time.Duration) (*model.DownloadLink, error) {
	const op = "artifact.DownloadLink"
	if id <= 0 {
		return nil, apperror.Validation(op, "id must be positive")
	}
	if expiry < time.Second || expiry > maxLinkExpiry {
		return nil, apperror.Validation(op, fmt.Sprintf("link expiry must be between 1s and %s", maxLinkExpiry))
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(op, "artifact not found")
		}
		return nil, err
	}

	issued := s.now()
	url, err := s.store.PresignGet(ctx, a.StoragePath, expiry)
	if err != nil {
		return nil, fmt.Errorf("presign payload: %w", err)
	}
	s.log.Info(ctx, "download link issued", "artifact_id", a.ID, "expiry", expiry.String())
	return &model.DownloadLink{ArtifactID: a.ID, URL: url, ExpiresAt: issued.Add(expiry)}, nil
}

func (s *artifactService) FindBySubject(ctx context.Context, subjectID int64) (*model.Artifact, error) {
	const op = "artifact.FindBySubject"
	items, err := s.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.NotFound(op, "no artifacts for subject")
	}
	latest := items[len(items)-1]
	return &latest, nil
}

func (s *artifactService) ListBySubject(ctx context.Context, subjectID int64) ([]model.Artifact, error) {
	if subjectID <= 0 {
		return nil, apperror.Validation("artifact.ListBySubject", "subject id must be positive")
	}
	return s.repo.ListBySubject(ctx, subjectID)
}

// DeleteBy removes payloads before rows; if a payload delete fails the rows
// are kept so the objects stay reachable.
func (s *artifactService) DeleteBy(ctx context.Context, subjectID, actorID int64) (int64, error) {
	const op = "artifact.DeleteBy"
	if subjectID <= 0 || actorID <= 0 {
		return 0, apperror.Validation(op, "subject id and actor id must be positive")
	}
	items, err := s.repo.ListBySubjectActor(ctx, subjectID, actorID)
	if err != nil {
		return 0, err
	}
	for _, a := range items {
		if err := s.store.Delete(ctx, a.StoragePath); err != nil {
			return 0, fmt.Errorf("delete storage: %w", err)
		}
	}
	n, err := s.repo.DeleteBySubjectActor(ctx, subjectID, actorID)
	if err != nil {
		return 0, err
	}
	s.log.Info(ctx, "artifacts deleted", "subject_id", subjectID, "actor_id", actorID, "count", n)
	return n, nil
}

func validateKey(op string, kind model.Kind, subjectID, actorID int64) error {
	if _, err := model.ParseKind(string(kind)); err != nil {
		return apperror.Validation(op, err.Error())
	}
	if subjectID <= 0 || actorID <= 0 {
		return apperror.Validation(op, "subject id and actor id must be positive")
	}
	return nil
}

func conflict(op string, kind model.Kind, subjectID, actorID int64) error {
	return apperror.Conflict(op, fmt.Sprintf("%s already stored for subject %d by actor %d", kind, subjectID, actorID))
}
