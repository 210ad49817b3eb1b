package browser

import "time"

// Product names as the category pages show them.
const (
	ProductESG410 = "ESG-410"
	ProductESG420 = "ESG-420"
	ProductUSG410 = "USG-410"
	ProductWMNP3  = "WM-NP3"
)

// TestFileESG410 is the canonical software package fixture name.
const TestFileESG410 = "ESG-410_v01.00.00.00-Hema"

// AppTitle is the portal's browser tab title.
const AppTitle = "Olympus Medical Software Delivery"

// Suite wait tiers. The stand-in portal responds in-process, so even
// LongTimeout stays far below what a deployed environment would need.
const (
	DefaultTimeout = 15 * time.Second
	ShortTimeout   = 5 * time.Second
	LongTimeout    = 30 * time.Second
)
