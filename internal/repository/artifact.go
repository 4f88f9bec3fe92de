package repository

import (
	"context"
	"errors"

	"certdocs/internal/model"
)

// ErrDuplicate is returned by Create when an artifact already exists for the
// same (subject, actor, kind).
var ErrDuplicate = errors.New("artifact already exists")

// ArtifactRepository defines data access for artifact metadata using SQL queries only.
// Payload bytes are not stored here; see storage.Storage.
type ArtifactRepository interface {
	// Create inserts a new artifact row and returns it with the generated ID.
	// Returns ErrDuplicate if the (subject, actor, kind) key is taken.
	Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error)

	// FindByID returns an artifact by its ID or sql.ErrNoRows.
	FindByID(ctx context.Context, id int64) (*model.Artifact, error)

	// Exists reports whether an artifact exists for the key.
	Exists(ctx context.Context, subjectID, actorID int64, kind model.Kind) (bool, error)

	// ListBySubject returns all artifacts for a subject, oldest first.
	ListBySubject(ctx context.Context, subjectID int64) ([]model.Artifact, error)

	// ListBySubjectActor returns artifacts for a (subject, actor) pair.
	ListBySubjectActor(ctx context.Context, subjectID, actorID int64) ([]model.Artifact, error)

	// DeleteBySubjectActor removes every artifact row for the pair and returns the count.
	DeleteBySubjectActor(ctx context.Context, subjectID, actorID int64) (int64, error)
}
