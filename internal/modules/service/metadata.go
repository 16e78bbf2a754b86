package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hossamdev/portfolio-api/internal/modules/model"
	"github.com/hossamdev/portfolio-api/internal/modules/repo"
)

// CVUpload is a staged résumé file included with a metadata save.
type CVUpload struct {
	Filename string
	Data     []byte
}

// SaveMetadataInput replaces the whole metadata document; there are no
// partial-field semantics. A nil CV keeps the current reference.
type SaveMetadataInput struct {
	Tags         []string
	Technologies []string
	Categories   []string
	CV           *CVUpload
}

type MetadataService interface {
	// Get returns the site metadata, or an empty document when none has
	// been saved yet.
	Get(ctx context.Context) (*model.SiteMetadata, error)
	Save(ctx context.Context, in SaveMetadataInput) (*model.SiteMetadata, error)
}

type metadataService struct {
	repo  repo.MetadataRepo
	media MediaService
	log   *zap.Logger
}

func NewMetadataService(r repo.MetadataRepo, media MediaService, log *zap.Logger) MetadataService {
	return &metadataService{repo: r, media: media, log: log}
}

func (s *metadataService) Get(ctx context.Context) (*model.SiteMetadata, error) {
	m, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyMetadata(), nil
		}
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return m, nil
}

func (s *metadataService) Save(ctx context.Context, in SaveMetadataInput) (*model.SiteMetadata, error) {
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	cv := current.CV.Data()
	if in.CV != nil {
		// Uploading a replacement releases the previous document on the
		// host as part of the same logical operation.
		ref, err := s.media.UploadDocument(ctx, in.CV.Filename, in.CV.Data, cv.PublicID)
		if err != nil {
			return nil, err
		}
		cv = ref
	}

	m := &model.SiteMetadata{
		Tags:         datatypes.NewJSONSlice(dedupe(in.Tags)),
		Technologies: datatypes.NewJSONSlice(dedupe(in.Technologies)),
		Categories:   datatypes.NewJSONSlice(dedupe(in.Categories)),
		CV:           datatypes.NewJSONType(cv),
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return m, nil
}

func emptyMetadata() *model.SiteMetadata {
	return &model.SiteMetadata{
		ID:           model.MetadataRowID,
		Tags:         datatypes.NewJSONSlice([]string{}),
		Technologies: datatypes.NewJSONSlice([]string{}),
		Categories:   datatypes.NewJSONSlice([]string{}),
	}
}

// dedupe keeps first occurrences in order; the metadata lists behave as
// ordered sets.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
