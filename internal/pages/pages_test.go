package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProductTileSelector(t *testing.T) {
	assert.Equal(t, `.product-tile:has-text("ESG-410 Software List")`, ProductTileSelector("ESG-410"))
	assert.Equal(t, `.product-tile:has-text("USG-410 Software List")`, ProductTileSelector("USG-410"))
}

func TestSoftwareListHeadingSelector(t *testing.T) {
	assert.Equal(t, `h4:has-text("ESG-420 Software List")`, SoftwareListHeadingSelector("ESG-420"))
}
