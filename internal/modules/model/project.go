package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Project struct {
	ID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`

	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Category    string `gorm:"type:text;not null;index" json:"category"`

	// Image is the primary media reference; Images the ordered secondary
	// references. Every non-empty entry is owned exclusively by this project.
	Image  string                      `gorm:"type:text" json:"image"`
	Images datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"images"`

	Tags         datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"tags"`
	Technologies datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"technologies"`
	Features     datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"features"`

	LiveURL   string `gorm:"type:text" json:"live_url"`
	GithubURL string `gorm:"type:text" json:"github_url"`
	Date      string `gorm:"type:text" json:"date"`
	Duration  string `gorm:"type:text" json:"duration"`
	Role      string `gorm:"type:text" json:"role"`
	Featured  bool   `gorm:"not null;default:false" json:"featured"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Project) TableName() string { return "projects" }

// MediaRefs returns every media reference the project owns, primary first.
func (p *Project) MediaRefs() []string {
	refs := make([]string, 0, 1+len(p.Images))
	if p.Image != "" {
		refs = append(refs, p.Image)
	}
	for _, u := range p.Images {
		if u != "" {
			refs = append(refs, u)
		}
	}
	return refs
}
