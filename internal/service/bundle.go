package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"certdocs/internal/apperror"
	"certdocs/internal/archive"
	"certdocs/internal/logging"
	"certdocs/internal/metrics"
	"certdocs/internal/model"
	"certdocs/internal/repository"
	"certdocs/internal/sibling"
	"certdocs/internal/storage"
)

// DocumentFetcher reads a subject's document of a sibling-owned kind.
type DocumentFetcher interface {
	Fetch(ctx context.Context, token string, kind model.Kind, subjectID int64) (*sibling.Document, error)
}

type BundleService interface {
	// ArchiveForSubject gathers the subject's stored artifacts and its
	// sibling documents into an archive ready to stream. The caller must
	// Close the archive.
	ArchiveForSubject(ctx context.Context, token string, subjectID int64) (*archive.Archive, error)

	// FetchSibling proxies one sibling document. The caller closes its body.
	FetchSibling(ctx context.Context, token string, kind model.Kind, subjectID int64) (*sibling.Document, error)
}

type bundleService struct {
	repo     repository.ArtifactRepository
	store    storage.Storage
	siblings DocumentFetcher
	metrics  *metrics.Domain
	log      logging.Logger
	now      func() time.Time
}

func NewBundleService(repo repository.ArtifactRepository, store storage.Storage, siblings DocumentFetcher, m *metrics.Domain, log logging.Logger) BundleService {
	return &bundleService{repo: repo, store: store, siblings: siblings, metrics: m, log: log, now: time.Now}
}

// ArchiveForSubject lists local artifacts, then fetches every sibling kind
// concurrently. A sibling 404 means the subject has no document of that kind;
// any other sibling failure aborts before anything is streamed. Local
// payloads are opened only when the archive reaches them.
func (s *bundleService) ArchiveForSubject(ctx context.Context, token string, subjectID int64) (*archive.Archive, error) {
	const op = "bundle.ArchiveForSubject"
	if subjectID <= 0 {
		return nil, apperror.Validation(op, "subject id must be positive")
	}

	local, err := s.repo.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	remote, err := s.fetchSiblings(ctx, token, subjectID)
	if err != nil {
		return nil, err
	}

	entries := make([]archive.Entry, 0, len(local)+len(remote))
	for _, a := range local {
		key := a.StoragePath
		entries = append(entries, archive.Lazy(a.Kind.DisplayName()+".pdf", metrics.SourceLocal, a.CreatedAt,
			func(ctx context.Context) (io.ReadCloser, error) {
				rc, _, err := s.store.Get(ctx, key)
				return rc, err
			}))
	}
	for _, d := range remote {
		entries = append(entries, archive.Opened(d.Kind.DisplayName()+".pdf", metrics.SourceRemote, s.now(), d.Body))
	}

	if len(entries) == 0 {
		return nil, apperror.NotFound(op, fmt.Sprintf("no documents found for subject %d", subjectID))
	}
	s.log.Info(ctx, "archive prepared", "subject_id", subjectID, "local", len(local), "remote", len(remote))
	return archive.New(entries, s.metrics), nil
}

// fetchSiblings returns the found documents in model.RemoteKinds order.
// Bodies must stay readable after the fan-out finishes, so requests run on
// ctx rather than on a group context that is canceled by Wait.
func (s *bundleService) fetchSiblings(ctx context.Context, token string, subjectID int64) ([]*sibling.Document, error) {
	kinds := model.RemoteKinds()
	docs := make([]*sibling.Document, len(kinds))

	var g errgroup.Group
	for i, kind := range kinds {
		g.Go(func() error {
			d, err := s.siblings.Fetch(ctx, token, kind, subjectID)
			if err != nil {
				if apperror.KindOf(err) == apperror.KindNotFound {
					return nil
				}
				return err
			}
			docs[i] = d
			return nil
		})
	}
	err := g.Wait()

	found := docs[:0]
	for _, d := range docs {
		if d == nil {
			continue
		}
		if err != nil {
			_ = d.Body.Close()
			continue
		}
		found = append(found, d)
	}
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *bundleService) FetchSibling(ctx context.Context, token string, kind model.Kind, subjectID int64) (*sibling.Document, error) {
	const op = "bundle.FetchSibling"
	if !kind.Remote() {
		return nil, apperror.Validation(op, fmt.Sprintf("%s is not a documents-service kind", kind))
	}
	if subjectID <= 0 {
		return nil, apperror.Validation(op, "subject id must be positive")
	}
	return s.siblings.Fetch(ctx, token, kind, subjectID)
}
