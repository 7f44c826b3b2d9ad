package enums

import "fmt"

// ArticleCategory maps to the article_category enum in Postgres.
type ArticleCategory string

const (
	ArticleCategoryBreedGuide ArticleCategory = "breed_guide"
	ArticleCategoryCropGuide  ArticleCategory = "crop_guide"
	ArticleCategoryMarketTips ArticleCategory = "market_tips"
)

var validArticleCategories = []ArticleCategory{
	ArticleCategoryBreedGuide,
	ArticleCategoryCropGuide,
	ArticleCategoryMarketTips,
}

// String implements fmt.Stringer.
func (c ArticleCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ArticleCategory.
func (c ArticleCategory) IsValid() bool {
	for _, candidate := range validArticleCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseArticleCategory converts raw input into an ArticleCategory.
func ParseArticleCategory(value string) (ArticleCategory, error) {
	for _, candidate := range validArticleCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid article category %q", value)
}
