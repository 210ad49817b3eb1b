package omsdapp

import "strings"

// Category ids double as URL path segments.
const (
	CategoryMedical = "medical"
	CategoryOther   = "other"
)

// Product is one entry in a category's software list.
type Product struct {
	Name     string
	Slug     string
	Versions []string
}

func categoryTitle(category string) string {
	switch category {
	case CategoryMedical:
		return "Medical Products"
	case CategoryOther:
		return "Other Products"
	default:
		return ""
	}
}

// defaultCatalog mirrors the QA catalog: the generator family under
// medical, accessories under other.
func defaultCatalog() map[string][]Product {
	return map[string][]Product{
		CategoryMedical: {
			product("ESG-410", "ESG-410_v01.00.00.00-Hema", "ESG-410_v00.90.00.00"),
			product("ESG-420", "ESG-420_v01.10.00.00"),
			product("USG-410", "USG-410_v02.00.00.00"),
		},
		CategoryOther: {
			product("WM-NP3", "WM-NP3_v03.01.00.00"),
		},
	}
}

func product(name string, versions ...string) Product {
	return Product{
		Name:     name,
		Slug:     strings.ToLower(name),
		Versions: versions,
	}
}

func (a *App) productBySlug(category, slug string) (Product, bool) {
	for _, p := range a.catalog[category] {
		if p.Slug == slug {
			return p, true
		}
	}
	return Product{}, false
}
