package mocks

import (
	"context"
	"io"
	"time"

	"certdocs/internal/archive"
	"certdocs/internal/model"
	"certdocs/internal/pdfstamp"
	"certdocs/internal/service"
	"certdocs/internal/sibling"
	"github.com/stretchr/testify/mock"
)

type MockArtifactService struct {
	mock.Mock
}

func (m *MockArtifactService) Save(ctx context.Context, pdf []byte, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error) {
	args := m.Called(ctx, pdf, kind, subjectID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) Upload(ctx context.Context, r io.Reader, contentType string, size int64, kind model.Kind, subjectID, actorID int64) (*model.Artifact, error) {
	args := m.Called(ctx, r, contentType, size, kind, subjectID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) Exists(ctx context.Context, subjectID, actorID int64, kind model.Kind) (bool, error) {
	args := m.Called(ctx, subjectID, actorID, kind)
	return args.Bool(0), args.Error(1)
}

func (m *MockArtifactService) Get(ctx context.Context, id int64) (*model.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) DownloadLink(ctx context.Context, id int64, expiry time.Duration) (*model.DownloadLink, error) {
	args := m.Called(ctx, id, expiry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DownloadLink), args.Error(1)
}

func (m *MockArtifactService) FindBySubject(ctx context.Context, subjectID int64) (*model.Artifact, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) ListBySubject(ctx context.Context, subjectID int64) ([]model.Artifact, error) {
	args := m.Called(ctx, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

func (m *MockArtifactService) DeleteBy(ctx context.Context, subjectID, actorID int64) (int64, error) {
	args := m.Called(ctx, subjectID, actorID)
	return args.Get(0).(int64), args.Error(1)
}

type MockFormService struct {
	mock.Mock
}

func (m *MockFormService) Generate(ctx context.Context, req service.FormRequest) (*service.FormResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FormResult), args.Error(1)
}

func (m *MockFormService) GenerateViaRemoteTemplate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error) {
	args := m.Called(ctx, templateRef, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFormService) GenerateViaLocalTemplate(ctx context.Context, templateRef string, fields model.FieldMap) ([]byte, error) {
	args := m.Called(ctx, templateRef, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFormService) StampImage(ctx context.Context, pdf []byte, ov pdfstamp.Overlay) ([]byte, error) {
	args := m.Called(ctx, pdf, ov)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFormService) StampPreset(ctx context.Context, pdf []byte, preset string, image []byte) ([]byte, error) {
	args := m.Called(ctx, pdf, preset, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

type MockBundleService struct {
	mock.Mock
}

func (m *MockBundleService) ArchiveForSubject(ctx context.Context, token string, subjectID int64) (*archive.Archive, error) {
	args := m.Called(ctx, token, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*archive.Archive), args.Error(1)
}

func (m *MockBundleService) FetchSibling(ctx context.Context, token string, kind model.Kind, subjectID int64) (*sibling.Document, error) {
	args := m.Called(ctx, token, kind, subjectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sibling.Document), args.Error(1)
}
