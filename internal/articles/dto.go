package articles

import (
	"time"

	"github.com/google/uuid"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	"github.com/dmuriuki/agrimarket-backend/pkg/enums"
	"github.com/dmuriuki/agrimarket-backend/pkg/pagination"
)

// CreateArticleInput is the payload for publishing guidance content.
type CreateArticleInput struct {
	Title     string                `json:"title" validate:"required,max=200"`
	Category  enums.ArticleCategory `json:"category" validate:"required"`
	Body      string                `json:"body" validate:"required"`
	Published bool                  `json:"published"`
}

// UpdateArticleInput carries partial edits to an article.
type UpdateArticleInput struct {
	Title     *string                `json:"title,omitempty" validate:"omitempty,max=200"`
	Category  *enums.ArticleCategory `json:"category,omitempty"`
	Body      *string                `json:"body,omitempty"`
	Published *bool                  `json:"published,omitempty"`
}

// AuthorSummary is the public slice of the article author.
type AuthorSummary struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// ArticleDTO is the transport shape for an article.
type ArticleDTO struct {
	ID        uuid.UUID             `json:"id"`
	Title     string                `json:"title"`
	Slug      string                `json:"slug"`
	Category  enums.ArticleCategory `json:"category"`
	Body      string                `json:"body"`
	Published bool                  `json:"published"`
	Author    *AuthorSummary        `json:"author,omitempty"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// ListArticlesInput configures the public article listing.
type ListArticlesInput struct {
	Category   *enums.ArticleCategory
	Pagination pagination.Params
}

// ArticleListResult wraps a page of articles plus the next cursor.
type ArticleListResult struct {
	Articles   []ArticleDTO `json:"articles"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// NewArticleDTO converts a loaded model into its transport shape.
func NewArticleDTO(article *models.Article) *ArticleDTO {
	if article == nil {
		return nil
	}
	dto := &ArticleDTO{
		ID:        article.ID,
		Title:     article.Title,
		Slug:      article.Slug,
		Category:  article.Category,
		Body:      article.Body,
		Published: article.Published,
		CreatedAt: article.CreatedAt,
		UpdatedAt: article.UpdatedAt,
	}
	if article.Author != nil {
		dto.Author = &AuthorSummary{
			ID:        article.Author.ID,
			FirstName: article.Author.FirstName,
			LastName:  article.Author.LastName,
		}
	}
	return dto
}
