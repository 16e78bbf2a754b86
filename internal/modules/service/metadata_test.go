package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hossamdev/portfolio-api/internal/modules/model"
)

type MockMediaService struct {
	mock.Mock
}

func (m *MockMediaService) UploadImage(ctx context.Context, filename string, data []byte) (model.MediaRef, error) {
	args := m.Called(ctx, filename, data)
	return args.Get(0).(model.MediaRef), args.Error(1)
}

func (m *MockMediaService) UploadDocument(ctx context.Context, filename string, data []byte, oldPublicID string) (model.MediaRef, error) {
	args := m.Called(ctx, filename, data, oldPublicID)
	return args.Get(0).(model.MediaRef), args.Error(1)
}

func (m *MockMediaService) DeleteImage(ctx context.Context, publicID string) (bool, error) {
	args := m.Called(ctx, publicID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMediaService) DeleteDocument(ctx context.Context, publicID string) (bool, error) {
	args := m.Called(ctx, publicID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMediaService) EnqueueCleanup(ctx context.Context, publicID string) {
	m.Called(ctx, publicID)
}

func TestMetadataService_Get_EmptyWhenUnsaved(t *testing.T) {
	repo := &MockMetadataRepo{}
	repo.On("Get", mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewMetadataService(repo, &MockMediaService{}, zap.NewNop())

	m, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Empty(t, []string(m.Tags))
	assert.Empty(t, []string(m.Categories))
	assert.Empty(t, m.CV.Data().URL)
}

func TestMetadataService_Save_DedupesLists(t *testing.T) {
	repo := &MockMetadataRepo{}
	repo.On("Get", mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *model.SiteMetadata) bool {
		return len(m.Tags) == 2 && m.Tags[0] == "go" && m.Tags[1] == "react"
	})).Return(nil)

	svc := NewMetadataService(repo, &MockMediaService{}, zap.NewNop())

	_, err := svc.Save(context.Background(), SaveMetadataInput{
		Tags: []string{"go", "react", "go", ""},
	})
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMetadataService_Save_ReplacesCV(t *testing.T) {
	repo := &MockMetadataRepo{}
	media := &MockMediaService{}

	current := &model.SiteMetadata{
		ID: model.MetadataRowID,
		CV: datatypes.NewJSONType(model.MediaRef{
			URL:      "https://cdn.example.com/pdfs/old-cv",
			PublicID: "old-cv",
		}),
	}
	repo.On("Get", mock.Anything).Return(current, nil)

	// The old public id rides along so the host can release the previous
	// document.
	media.On("UploadDocument", mock.Anything, "cv.pdf", mock.Anything, "old-cv").
		Return(model.MediaRef{URL: "https://cdn.example.com/pdfs/new-cv", PublicID: "new-cv"}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *model.SiteMetadata) bool {
		return m.CV.Data().PublicID == "new-cv"
	})).Return(nil)

	svc := NewMetadataService(repo, media, zap.NewNop())

	saved, err := svc.Save(context.Background(), SaveMetadataInput{
		CV: &CVUpload{Filename: "cv.pdf", Data: []byte("%PDF-1.4")},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-cv", saved.CV.Data().PublicID)
	media.AssertExpectations(t)
}

func TestMetadataService_Save_KeepsCVWhenNoneUploaded(t *testing.T) {
	repo := &MockMetadataRepo{}
	media := &MockMediaService{}

	current := &model.SiteMetadata{
		ID: model.MetadataRowID,
		CV: datatypes.NewJSONType(model.MediaRef{
			URL:      "https://cdn.example.com/pdfs/cv",
			PublicID: "cv",
		}),
	}
	repo.On("Get", mock.Anything).Return(current, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *model.SiteMetadata) bool {
		return m.CV.Data().PublicID == "cv"
	})).Return(nil)

	svc := NewMetadataService(repo, media, zap.NewNop())

	_, err := svc.Save(context.Background(), SaveMetadataInput{Tags: []string{"go"}})
	require.NoError(t, err)
	media.AssertNotCalled(t, "UploadDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMetadataService_Save_UploadFailureAborts(t *testing.T) {
	repo := &MockMetadataRepo{}
	media := &MockMediaService{}

	repo.On("Get", mock.Anything).Return(nil, gorm.ErrRecordNotFound)
	media.On("UploadDocument", mock.Anything, "cv.pdf", mock.Anything, "").
		Return(model.MediaRef{}, assert.AnError)

	svc := NewMetadataService(repo, media, zap.NewNop())

	_, err := svc.Save(context.Background(), SaveMetadataInput{
		CV: &CVUpload{Filename: "cv.pdf", Data: []byte("%PDF-1.4")},
	})
	assert.Error(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
