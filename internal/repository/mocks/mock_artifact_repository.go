package mocks

import (
	"context"

	"certdocs/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) FindByID(ctx context.Context, id int64) (*model.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) Exists(ctx context.Context, subjectID, actorID int64, kind model.Kind) (bool, error) {
	args := m.Called(ctx, subjectID, actorID, kind)
	return args.Bool(0), args.Error(1)
}

func (m *MockArtifactRepository) ListBySubject(ctx context.Context, subjectID int64) ([]model.Artifact, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) ListBySubjectActor(ctx context.Context, subjectID, actorID int64) ([]model.Artifact, error) {
	args := m.Called(ctx, subjectID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) DeleteBySubjectActor(ctx context.Context, subjectID, actorID int64) (int64, error) {
	args := m.Called(ctx, subjectID, actorID)
	return args.Get(0).(int64), args.Error(1)
}
