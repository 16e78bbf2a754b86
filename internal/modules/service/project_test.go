package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/modules/model"
	"github.com/hossamdev/portfolio-api/internal/pkg/reconcile"
)

type MockProjectRepo struct {
	mock.Mock
}

func (m *MockProjectRepo) Create(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepo) Update(ctx context.Context, p *model.Project) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Project), args.Error(1)
}

func (m *MockProjectRepo) List(ctx context.Context) ([]model.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Project), args.Error(1)
}

type MockMetadataRepo struct {
	mock.Mock
}

func (m *MockMetadataRepo) Get(ctx context.Context) (*model.SiteMetadata, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SiteMetadata), args.Error(1)
}

func (m *MockMetadataRepo) Save(ctx context.Context, meta *model.SiteMetadata) error {
	return m.Called(ctx, meta).Error(0)
}

// MockUploadStore backs the reconciliation engine in service tests.
type MockUploadStore struct {
	mock.Mock
}

func (m *MockUploadStore) UploadImage(ctx context.Context, filename string, data []byte) (model.MediaRef, error) {
	args := m.Called(ctx, filename, data)
	return args.Get(0).(model.MediaRef), args.Error(1)
}

func (m *MockUploadStore) DeleteImage(ctx context.Context, publicID string) (bool, error) {
	args := m.Called(ctx, publicID)
	return args.Bool(0), args.Error(1)
}

type projectFixture struct {
	repo  *MockProjectRepo
	meta  *MockMetadataRepo
	store *MockUploadStore
	rdb   *redis.Client
	mr    *miniredis.Miniredis
	svc   ProjectService
}

func newProjectFixture(t *testing.T) *projectFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	f := &projectFixture{
		repo:  &MockProjectRepo{},
		meta:  &MockMetadataRepo{},
		store: &MockUploadStore{},
		rdb:   rdb,
		mr:    mr,
	}

	cfg := &config.Config{}
	cfg.Redis.CatalogTTLSec = 60

	engine := reconcile.NewEngine(f.store, nil, zap.NewNop())
	f.svc = NewProjectService(f.repo, f.meta, engine, rdb, cfg, zap.NewNop())
	return f
}

func (f *projectFixture) allowAnyCategory() {
	f.meta.On("Get", mock.Anything).Return(nil, gorm.ErrRecordNotFound)
}

func url(id string) string { return "https://cdn.example.com/images/" + id }

func storedProject(id uuid.UUID, main string, extras ...string) *model.Project {
	return &model.Project{
		ID:       id,
		Title:    "Old Title",
		Category: "web",
		Image:    main,
		Images:   datatypes.NewJSONSlice(extras),
		Tags:     datatypes.NewJSONSlice([]string{}),
	}
}

func TestProjectService_Create(t *testing.T) {
	f := newProjectFixture(t)
	f.allowAnyCategory()

	f.store.On("UploadImage", mock.Anything, "cover.png", mock.Anything).
		Return(model.MediaRef{URL: url("cover"), PublicID: "cover"}, nil)
	f.repo.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
		return p.Title == "New" && p.Image == url("cover")
	})).Return(nil)

	main := reconcile.NewUpload("cover.png", []byte{1})
	p, err := f.svc.Create(context.Background(), ProjectInput{
		Title:     "New",
		Category:  "web",
		MainImage: &main,
	})
	require.NoError(t, err)
	assert.Equal(t, url("cover"), p.Image)

	// Creation never deletes anything on the host.
	f.store.AssertNotCalled(t, "DeleteImage", mock.Anything, mock.Anything)
	f.repo.AssertExpectations(t)
}

func TestProjectService_Create_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ProjectInput
		meta  func(*MockMetadataRepo)
	}{
		{
			name:  "missing title",
			input: ProjectInput{Category: "web"},
			meta:  func(m *MockMetadataRepo) {},
		},
		{
			name:  "missing category",
			input: ProjectInput{Title: "X"},
			meta:  func(m *MockMetadataRepo) {},
		},
		{
			name:  "category outside the saved vocabulary",
			input: ProjectInput{Title: "X", Category: "bogus"},
			meta: func(m *MockMetadataRepo) {
				m.On("Get", mock.Anything).Return(&model.SiteMetadata{
					Categories: datatypes.NewJSONSlice([]string{"web", "data"}),
				}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProjectFixture(t)
			tt.meta(f.meta)

			_, err := f.svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, ErrValidation)
			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestProjectService_Update_DeletesOnlyOrphans(t *testing.T) {
	f := newProjectFixture(t)
	f.allowAnyCategory()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).
		Return(storedProject(id, url("a"), url("b"), url("c")), nil)

	f.store.On("UploadImage", mock.Anything, "new.png", mock.Anything).
		Return(model.MediaRef{URL: url("d"), PublicID: "d"}, nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
		return p.Image == url("a") && len(p.Images) == 2 &&
			p.Images[0] == url("c") && p.Images[1] == url("d")
	})).Return(nil)
	// Only b was dropped.
	f.store.On("DeleteImage", mock.Anything, "b").Return(true, nil)

	main := reconcile.Existing(url("a"))
	_, err := f.svc.Update(context.Background(), id, ProjectInput{
		Title:     "Updated",
		Category:  "web",
		MainImage: &main,
		ExtraImages: []reconcile.Item{
			reconcile.Existing(url("c")),
			reconcile.NewUpload("new.png", []byte{1}),
		},
	})
	require.NoError(t, err)

	f.store.AssertExpectations(t)
	f.store.AssertNumberOfCalls(t, "DeleteImage", 1)
}

func TestProjectService_Update_UploadFailureLeavesStateUntouched(t *testing.T) {
	f := newProjectFixture(t)
	f.allowAnyCategory()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).
		Return(storedProject(id, url("a"), url("b")), nil)
	f.store.On("UploadImage", mock.Anything, "new.png", mock.Anything).
		Return(model.MediaRef{}, assert.AnError)

	main := reconcile.Existing(url("a"))
	_, err := f.svc.Update(context.Background(), id, ProjectInput{
		Title:     "Updated",
		Category:  "web",
		MainImage: &main,
		ExtraImages: []reconcile.Item{
			reconcile.NewUpload("new.png", []byte{1}),
		},
	})
	assert.Error(t, err)

	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.store.AssertNotCalled(t, "DeleteImage", mock.Anything, mock.Anything)
}

func TestProjectService_Update_PersistFailureSkipsDeletes(t *testing.T) {
	f := newProjectFixture(t)
	f.allowAnyCategory()

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).
		Return(storedProject(id, url("a"), url("b")), nil)
	f.repo.On("Update", mock.Anything, mock.Anything).Return(assert.AnError)

	main := reconcile.Existing(url("a"))
	_, err := f.svc.Update(context.Background(), id, ProjectInput{
		Title:     "Updated",
		Category:  "web",
		MainImage: &main,
	})
	assert.Error(t, err)

	// The previous references stay live when persistence fails.
	f.store.AssertNotCalled(t, "DeleteImage", mock.Anything, mock.Anything)
}

func TestProjectService_Update_NotFound(t *testing.T) {
	f := newProjectFixture(t)

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

	_, err := f.svc.Update(context.Background(), id, ProjectInput{Title: "X", Category: "web"})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Delete_ReleasesAllReferences(t *testing.T) {
	f := newProjectFixture(t)

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).
		Return(storedProject(id, url("a"), url("b")), nil)
	f.store.On("DeleteImage", mock.Anything, "a").Return(true, nil)
	f.store.On("DeleteImage", mock.Anything, "b").Return(true, nil)
	f.repo.On("Delete", mock.Anything, id).Return(nil)

	err := f.svc.Delete(context.Background(), id)
	require.NoError(t, err)

	f.store.AssertExpectations(t)
	f.repo.AssertExpectations(t)
}

func TestProjectService_SetFeatured(t *testing.T) {
	f := newProjectFixture(t)

	id := uuid.New()
	f.repo.On("GetByID", mock.Anything, id).
		Return(storedProject(id, url("a")), nil)
	f.repo.On("Update", mock.Anything, mock.MatchedBy(func(p *model.Project) bool {
		return p.Featured
	})).Return(nil)

	p, err := f.svc.SetFeatured(context.Background(), id, true)
	require.NoError(t, err)
	assert.True(t, p.Featured)
}

func TestProjectService_List_CachesCatalog(t *testing.T) {
	f := newProjectFixture(t)

	stored := []model.Project{*storedProject(uuid.New(), url("a"))}
	f.repo.On("List", mock.Anything).Return(stored, nil).Once()

	first, err := f.svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Second read is served from the cache; the repo is not consulted.
	second, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first[0].ID, second[0].ID)
	f.repo.AssertNumberOfCalls(t, "List", 1)
}

func TestProjectService_MutationsInvalidateCatalogCache(t *testing.T) {
	f := newProjectFixture(t)
	f.allowAnyCategory()

	stored := []model.Project{*storedProject(uuid.New(), url("a"))}
	f.repo.On("List", mock.Anything).Return(stored, nil)

	_, err := f.svc.List(context.Background())
	require.NoError(t, err)
	assert.True(t, f.mr.Exists("portfolio:projects:v1"))

	f.repo.On("Create", mock.Anything, mock.Anything).Return(nil)
	_, err = f.svc.Create(context.Background(), ProjectInput{Title: "X", Category: "web"})
	require.NoError(t, err)

	assert.False(t, f.mr.Exists("portfolio:projects:v1"))
}
