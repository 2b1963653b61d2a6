package extract

// BoxAttr carries an element's on-screen bounding-box top-left corner
// ("x,y", CSS pixels) into the HTML snapshot. The browser adapter stamps it
// onto every img and link before capturing the document, so the proximity
// heuristic can run offline.
const BoxAttr = "data-crawl-box"

// imageSelectors is the ordered candidate discovery list: src-substring
// matches for the known image CDNs first, then the legacy result-grid
// container classes. Output order follows this list, then document order
// within each selector.
var imageSelectors = []string{
	`img[src*="encrypted-tbn"]`,
	`img[src*="googleusercontent"]`,
	`img[src*="gstatic"]`,
	".rg_l img",
	".islrc img",
	"[data-ved] img",
}

// containerSelector locates the nearest ancestor result container for a
// candidate image.
const containerSelector = "[data-ved], .rg_l, .islrc, .rg_i, .islir"

// linkSelectors is the ordered source-link fallback chain, tried in sequence
// within a container or ancestor scope. The first selector whose first match
// resolves to an http address wins.
var linkSelectors = []string{
	`a[href*="http"]`,
	"a.umNKYc",
	"a[data-ved]",
	"a",
	"[data-ved] a",
	".rg_l a",
	".islrc a",
}

// absoluteLinkSelector feeds the document-wide proximity fallback.
const absoluteLinkSelector = `a[href*="http"]`

// nonContentPatterns mark known non-result assets (logos, tracking pixels).
var nonContentPatterns = []string{
	"google.com/logos",
	"google.com/tia",
}
