package articles

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dmuriuki/agrimarket-backend/pkg/db/models"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Service defines the article operations.
type Service interface {
	Create(ctx context.Context, authorID uuid.UUID, input CreateArticleInput) (*ArticleDTO, error)
	Update(ctx context.Context, authorID, articleID uuid.UUID, input UpdateArticleInput) (*ArticleDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ArticleDTO, error)
	List(ctx context.Context, input ListArticlesInput) (*ArticleListResult, error)
}

type service struct {
	repo *Repository
}

// NewService builds the article service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "articles repository required")
	}
	return &service{repo: repo}, nil
}

// Create validates the payload, derives a unique slug from the title, and
// inserts the article.
func (s *service) Create(ctx context.Context, authorID uuid.UUID, input CreateArticleInput) (*ArticleDTO, error) {
	if authorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "author identity missing")
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid article category")
	}
	if strings.TrimSpace(input.Body) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
	}

	slug, err := s.uniqueSlug(ctx, title)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Slug:      slug,
		Category:  input.Category,
		Body:      input.Body,
		Published: input.Published,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert article")
	}
	return NewArticleDTO(article), nil
}

// Update applies the non-nil fields; only the author may edit. The slug is
// stable once minted, retitling never breaks published links.
func (s *service) Update(ctx context.Context, authorID, articleID uuid.UUID, input UpdateArticleInput) (*ArticleDTO, error) {
	if authorID == uuid.Nil || articleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "author and article ids required")
	}

	article, err := s.repo.FindByID(ctx, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	if article.AuthorID != authorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "article does not belong to author")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title required")
		}
		article.Title = title
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid article category")
		}
		article.Category = *input.Category
	}
	if input.Body != nil {
		if strings.TrimSpace(*input.Body) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "body required")
		}
		article.Body = *input.Body
	}
	if input.Published != nil {
		article.Published = *input.Published
	}

	if err := s.repo.Save(ctx, article); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update article")
	}
	return NewArticleDTO(article), nil
}

// GetBySlug returns a published article to anonymous readers.
func (s *service) GetBySlug(ctx context.Context, slug string) (*ArticleDTO, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug required")
	}

	article, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "article not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load article")
	}
	return NewArticleDTO(article), nil
}

// List pages through published articles.
func (s *service) List(ctx context.Context, input ListArticlesInput) (*ArticleListResult, error) {
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid article category")
	}

	rows, next, err := s.repo.List(ctx, articlesListQuery{
		Category:   input.Category,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list articles")
	}

	dtos := make([]ArticleDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewArticleDTO(&rows[i]))
	}
	return &ArticleListResult{Articles: dtos, NextCursor: next}, nil
}

// uniqueSlug slugifies the title and suffixes a counter until no other
// article holds it.
func (s *service) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "title must contain letters or digits")
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.repo.SlugExists(ctx, slug)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

// Slugify lowercases the title and collapses every non-alphanumeric run into
// a single hyphen.
func Slugify(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(slug, "-")
}
