package model

import (
	"time"

	"gorm.io/datatypes"
)

// MediaRef is the (url, public_id) pair returned by the media gateway on
// upload. The public id is what the media host needs for deletion.
type MediaRef struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// MetadataRowID pins the site metadata to a single row; the table is a
// singleton document, overwritten wholesale on every save.
const MetadataRowID = 1

type SiteMetadata struct {
	ID int64 `gorm:"primaryKey" json:"-"`

	Tags         datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	Technologies datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"technologies"`
	Categories   datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"categories"`

	// CV is the downloadable résumé reference, replaced host-side when a
	// new document is uploaded.
	CV datatypes.JSONType[MediaRef] `gorm:"type:jsonb" json:"cv"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SiteMetadata) TableName() string { return "site_metadata" }
