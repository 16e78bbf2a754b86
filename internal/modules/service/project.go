package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hossamdev/portfolio-api/internal/config"
	"github.com/hossamdev/portfolio-api/internal/modules/model"
	"github.com/hossamdev/portfolio-api/internal/modules/repo"
	"github.com/hossamdev/portfolio-api/internal/pkg/reconcile"
)

const catalogCacheKey = "portfolio:projects:v1"

// ProjectInput carries the full mutable state of a project plus the staged
// media slots. Saving is a full replace of the mutable fields.
type ProjectInput struct {
	Title        string
	Description  string
	Category     string
	Tags         []string
	Technologies []string
	Features     []string
	LiveURL      string
	GithubURL    string
	Date         string
	Duration     string
	Role         string
	Featured     bool

	MainImage   *reconcile.Item
	ExtraImages []reconcile.Item
}

type ProjectService interface {
	List(ctx context.Context) ([]model.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	Create(ctx context.Context, in ProjectInput) (*model.Project, error)
	Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*model.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Project, error)
}

type projectService struct {
	repo     repo.ProjectRepo
	metaRepo repo.MetadataRepo
	engine   *reconcile.Engine
	rdb      *redis.Client
	cacheTTL time.Duration
	log      *zap.Logger
}

func NewProjectService(r repo.ProjectRepo, mr repo.MetadataRepo, engine *reconcile.Engine, rdb *redis.Client, cfg *config.Config, log *zap.Logger) ProjectService {
	ttl := time.Duration(cfg.Redis.CatalogTTLSec) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &projectService{repo: r, metaRepo: mr, engine: engine, rdb: rdb, cacheTTL: ttl, log: log}
}

func (s *projectService) List(ctx context.Context) ([]model.Project, error) {
	if cached, ok := s.loadCache(ctx); ok {
		return cached, nil
	}

	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	s.storeCache(ctx, list)
	return list, nil
}

func (s *projectService) GetByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *projectService) Create(ctx context.Context, in ProjectInput) (*model.Project, error) {
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	// No previous references exist on create, so reconciliation reduces to
	// the uploads; the orphan plan is empty by construction.
	resolved, err := s.engine.Resolve(ctx, in.MainImage, in.ExtraImages)
	if err != nil {
		return nil, err
	}

	p := &model.Project{ID: uuid.New()}
	applyInput(p, in, resolved)

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.engine.DeleteOrphans(ctx, reconcile.Plan(nil, resolved))
	s.invalidateCache(ctx)
	return p, nil
}

func (s *projectService) Update(ctx context.Context, id uuid.UUID, in ProjectInput) (*model.Project, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	previousRefs := existing.MediaRefs()

	resolved, err := s.engine.Resolve(ctx, in.MainImage, in.ExtraImages)
	if err != nil {
		// Nothing persisted, nothing deleted; prior state stands.
		return nil, err
	}

	applyInput(existing, in, resolved)
	if err := s.repo.Update(ctx, existing); err != nil {
		// Fresh uploads may leak, but the previous references stay live
		// and referenced; deletions must not run off an unpersisted state.
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.engine.DeleteOrphans(ctx, reconcile.Plan(previousRefs, resolved))
	s.invalidateCache(ctx)
	return existing, nil
}

func (s *projectService) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	// Release every owned reference before the row disappears; afterwards
	// nothing would remember what to delete.
	s.engine.DeleteOrphans(ctx, existing.MediaRefs())

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *projectService) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) (*model.Project, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing.Featured = featured
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	s.invalidateCache(ctx)
	return existing, nil
}

func (s *projectService) validate(ctx context.Context, in ProjectInput) error {
	if in.Title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if in.Category == "" {
		return fmt.Errorf("%w: category is required", ErrValidation)
	}

	meta, err := s.metaRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// No metadata saved yet; nothing to check against.
			return nil
		}
		return fmt.Errorf("load metadata: %w", err)
	}
	if len(meta.Categories) == 0 {
		return nil
	}
	for _, c := range meta.Categories {
		if c == in.Category {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown category %q", ErrValidation, in.Category)
}

func applyInput(p *model.Project, in ProjectInput, resolved reconcile.Resolved) {
	p.Title = in.Title
	p.Description = in.Description
	p.Category = in.Category
	p.Tags = datatypes.NewJSONSlice(emptyIfNil(in.Tags))
	p.Technologies = datatypes.NewJSONSlice(emptyIfNil(in.Technologies))
	p.Features = datatypes.NewJSONSlice(emptyIfNil(in.Features))
	p.LiveURL = in.LiveURL
	p.GithubURL = in.GithubURL
	p.Date = in.Date
	p.Duration = in.Duration
	p.Role = in.Role
	p.Featured = in.Featured
	p.Image = resolved.MainURL
	p.Images = datatypes.NewJSONSlice(emptyIfNil(resolved.ExtraURLs))
	p.UpdatedAt = time.Now().UTC()
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *projectService) loadCache(ctx context.Context) ([]model.Project, bool) {
	if s.rdb == nil {
		return nil, false
	}
	b, err := s.rdb.Get(ctx, catalogCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("catalog cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var list []model.Project
	if err := sonic.Unmarshal(b, &list); err != nil {
		s.log.Warn("catalog cache decode failed", zap.Error(err))
		return nil, false
	}
	return list, true
}

func (s *projectService) storeCache(ctx context.Context, list []model.Project) {
	if s.rdb == nil {
		return
	}
	b, err := sonic.Marshal(list)
	if err != nil {
		s.log.Warn("catalog cache encode failed", zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, catalogCacheKey, b, s.cacheTTL).Err(); err != nil {
		s.log.Warn("catalog cache write failed", zap.Error(err))
	}
}

func (s *projectService) invalidateCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, catalogCacheKey).Err(); err != nil {
		s.log.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
