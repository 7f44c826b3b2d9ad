package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
)

// Article is farmer-authored guidance content (breed guides, crop guides,
// market tips).
type Article struct {
	ID        uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AuthorID  uuid.UUID             `gorm:"column:author_id;type:uuid;not null;index"`
	Title     string                `gorm:"column:title;not null"`
	Slug      string                `gorm:"column:slug;not null;uniqueIndex"`
	Category  enums.ArticleCategory `gorm:"column:category;type:article_category;not null"`
	Body      string                `gorm:"column:body;not null"`
	Published bool                  `gorm:"column:published;not null;default:false"`
	Author    *User                 `gorm:"foreignKey:AuthorID"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
