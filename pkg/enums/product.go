package enums

import "fmt"

// ProductCategory maps to the product_category enum in Postgres.
type ProductCategory string

const (
	ProductCategoryLivestock ProductCategory = "livestock"
	ProductCategoryPoultry   ProductCategory = "poultry"
	ProductCategoryProduce   ProductCategory = "produce"
	ProductCategoryDairy     ProductCategory = "dairy"
	ProductCategoryCereals   ProductCategory = "cereals"
	ProductCategoryEquipment ProductCategory = "equipment"
	ProductCategoryFeed      ProductCategory = "feed"
)

var validProductCategories = []ProductCategory{
	ProductCategoryLivestock,
	ProductCategoryPoultry,
	ProductCategoryProduce,
	ProductCategoryDairy,
	ProductCategoryCereals,
	ProductCategoryEquipment,
	ProductCategoryFeed,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ProductCategory.
func (c ProductCategory) IsValid() bool {
	for _, candidate := range validProductCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseProductCategory converts raw input into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	for _, candidate := range validProductCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product category %q", value)
}

// ProductUnit is the unit products are priced and sold in.
type ProductUnit string

const (
	ProductUnitPiece ProductUnit = "piece"
	ProductUnitKg    ProductUnit = "kg"
	ProductUnitLitre ProductUnit = "litre"
	ProductUnitBag   ProductUnit = "bag"
	ProductUnitCrate ProductUnit = "crate"
	ProductUnitTray  ProductUnit = "tray"
)

var validProductUnits = []ProductUnit{
	ProductUnitPiece,
	ProductUnitKg,
	ProductUnitLitre,
	ProductUnitBag,
	ProductUnitCrate,
	ProductUnitTray,
}

// String implements fmt.Stringer.
func (u ProductUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known ProductUnit.
func (u ProductUnit) IsValid() bool {
	for _, candidate := range validProductUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseProductUnit converts raw input into a ProductUnit.
func ParseProductUnit(value string) (ProductUnit, error) {
	for _, candidate := range validProductUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product unit %q", value)
}
