package postgres

import (
	"context"
	"database/sql"

	"certdocs/internal/database"
	"certdocs/internal/model"
	"certdocs/internal/repository"
)

// ArtifactPostgres is a PostgreSQL implementation of repository.ArtifactRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type ArtifactPostgres struct {
	db *sql.DB
}

// NewArtifactPostgres creates a new ArtifactPostgres repository.
func NewArtifactPostgres(db *sql.DB) *ArtifactPostgres {
	return &ArtifactPostgres{db: db}
}

var _ repository.ArtifactRepository = (*ArtifactPostgres)(nil)

const artifactColumns = `id, subject_id, actor_id, kind, content_type, storage_path, size, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanArtifact(s scanner) (*model.Artifact, error) {
	var a model.Artifact
	var kind string
	if err := s.Scan(
		&a.ID,
		&a.SubjectID,
		&a.ActorID,
		&kind,
		&a.ContentType,
		&a.StoragePath,
		&a.Size,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	a.Kind = model.Kind(kind)
	return &a, nil
}

// Create inserts a new artifact row and returns the stored record.
func (r *ArtifactPostgres) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	const q = `
		INSERT INTO artifacts (subject_id, actor_id, kind, content_type, storage_path, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + artifactColumns
	row := r.db.QueryRowContext(ctx, q,
		a.SubjectID,
		a.ActorID,
		string(a.Kind),
		a.ContentType,
		a.StoragePath,
		a.Size,
		a.CreatedAt,
	)
	out, err := scanArtifact(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// FindByID fetches a single artifact by its ID.
func (r *ArtifactPostgres) FindByID(ctx context.Context, id int64) (*model.Artifact, error) {
	const q = `SELECT ` + artifactColumns + ` FROM artifacts WHERE id = $1`
	return scanArtifact(r.db.QueryRowContext(ctx, q, id))
}

// Exists checks the (subject, actor, kind) key.
func (r *ArtifactPostgres) Exists(ctx context.Context, subjectID, actorID int64, kind model.Kind) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM artifacts WHERE subject_id = $1 AND actor_id = $2 AND kind = $3)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, subjectID, actorID, string(kind)).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

// ListBySubject returns every artifact of a subject ordered by creation time.
func (r *ArtifactPostgres) ListBySubject(ctx context.Context, subjectID int64) ([]model.Artifact, error) {
	const q = `SELECT ` + artifactColumns + ` FROM artifacts WHERE subject_id = $1 ORDER BY created_at ASC, id ASC`
	return r.list(ctx, q, subjectID)
}

// ListBySubjectActor returns the artifacts a given actor produced for a subject.
func (r *ArtifactPostgres) ListBySubjectActor(ctx context.Context, subjectID, actorID int64) ([]model.Artifact, error) {
	const q = `SELECT ` + artifactColumns + ` FROM artifacts WHERE subject_id = $1 AND actor_id = $2 ORDER BY id ASC`
	return r.list(ctx, q, subjectID, actorID)
}

func (r *ArtifactPostgres) list(ctx context.Context, q string, args ...any) ([]model.Artifact, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Artifact, 0)
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteBySubjectActor removes all rows for the pair. Zero rows is not an error.
func (r *ArtifactPostgres) DeleteBySubjectActor(ctx context.Context, subjectID, actorID int64) (int64, error) {
	const q = `DELETE FROM artifacts WHERE subject_id = $1 AND actor_id = $2`
	res, err := r.db.ExecContext(ctx, q, subjectID, actorID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
