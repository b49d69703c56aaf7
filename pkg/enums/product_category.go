package enums

import "fmt"

// ProductCategory represents the catalog categories carried by the retailer.
type ProductCategory string

const (
	ProductCategoryPlacas      ProductCategory = "placas"
	ProductCategoryPerfiles    ProductCategory = "perfiles"
	ProductCategoryAislantes   ProductCategory = "aislantes"
	ProductCategoryMasillas    ProductCategory = "masillas"
	ProductCategoryCielorrasos ProductCategory = "cielorrasos"
	ProductCategoryAccesorios  ProductCategory = "accesorios"
)

var validProductCategories = []ProductCategory{
	ProductCategoryPlacas,
	ProductCategoryPerfiles,
	ProductCategoryAislantes,
	ProductCategoryMasillas,
	ProductCategoryCielorrasos,
	ProductCategoryAccesorios,
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
