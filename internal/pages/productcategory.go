package pages

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Selectors on the product category screens.
const (
	categoryMedicalBox = "#medical-product-box"
	categoryOtherBox   = "#other-product-box"
	categoryBackButton = "#back-button"
)

// ProductTileSelector locates the tile that opens a product's software
// list, e.g. the "ESG-410 Software List" tile.
func ProductTileSelector(product string) string {
	return fmt.Sprintf(`.product-tile:has-text(%q)`, product+" Software List")
}

// SoftwareListHeadingSelector locates the heading of a product's software
// list screen.
func SoftwareListHeadingSelector(product string) string {
	return fmt.Sprintf(`h4:has-text(%q)`, product+" Software List")
}

// ProductCategoryPage is the category chooser plus the per-category product
// tiles it leads to.
type ProductCategoryPage struct {
	base
}

func NewProductCategoryPage(page playwright.Page) *ProductCategoryPage {
	return &ProductCategoryPage{base: newBase(page, "product_category")}
}

// WaitVisible blocks until the category boxes render.
func (p *ProductCategoryPage) WaitVisible() error {
	return p.waitVisible(categoryMedicalBox)
}

// OpenMedical opens the medical products category.
func (p *ProductCategoryPage) OpenMedical() error {
	return p.click(categoryMedicalBox)
}

// OpenOther opens the non-medical products category.
func (p *ProductCategoryPage) OpenOther() error {
	return p.click(categoryOtherBox)
}

// SelectProduct opens the software list for one product tile.
func (p *ProductCategoryPage) SelectProduct(product string) error {
	return p.click(ProductTileSelector(product))
}

// SoftwareListVisible blocks until the product's software list heading
// renders.
func (p *ProductCategoryPage) SoftwareListVisible(product string) error {
	return p.waitVisible(SoftwareListHeadingSelector(product))
}

// Back returns to the category chooser.
func (p *ProductCategoryPage) Back() error {
	return p.click(categoryBackButton)
}
