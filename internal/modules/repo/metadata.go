package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hossamdev/portfolio-api/internal/modules/model"
)

type MetadataRepo interface {
	Get(ctx context.Context) (*model.SiteMetadata, error)
	// Save overwrites the singleton row wholesale; last writer wins. The
	// row is created implicitly on the first save.
	Save(ctx context.Context, m *model.SiteMetadata) error
}

type metadataRepo struct{ db *gorm.DB }

func NewMetadataRepo(db *gorm.DB) MetadataRepo { return &metadataRepo{db: db} }

func (r *metadataRepo) Get(ctx context.Context) (*model.SiteMetadata, error) {
	var m model.SiteMetadata
	if err := r.db.WithContext(ctx).Where("id = ?", model.MetadataRowID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *metadataRepo) Save(ctx context.Context, m *model.SiteMetadata) error {
	m.ID = model.MetadataRowID
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(m).Error
}
