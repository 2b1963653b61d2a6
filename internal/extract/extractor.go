// Package extract mines structured image records out of a settled results
// page. The heuristic runs over a captured document snapshot rather than the
// live browser, so it is a pure function of its input and can be exercised
// against fixture documents.
package extract

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/user/image-crawler-service/internal/entity"
	"github.com/user/image-crawler-service/pkg/utils"
)

const (
	minImageURLLen  = 10
	maxLabelLen     = 100
	proximityRadius = 200.0
	parentWalkDepth = 5
)

// Extractor reconstructs ImageRecords from an unlabeled, inconsistently
// structured document. The zero value is not usable; use NewExtractor.
type Extractor struct {
	now func() time.Time
}

func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// Extract returns at most maxImages deduplicated records in candidate
// discovery order. Candidates that fail URL resolution are skipped silently.
func (e *Extractor) Extract(doc *goquery.Document, pageURL string, maxImages int) []entity.ImageRecord {
	base, _ := url.Parse(pageURL)
	query := searchQuery(pageURL)

	records := make([]entity.ImageRecord, 0, maxImages)
	seenURLs := make(map[string]struct{})

	for _, img := range candidates(doc) {
		if len(records) >= maxImages {
			break
		}

		src := imageURL(img)
		if !usableImageURL(src) {
			continue
		}
		if _, dup := seenURLs[src]; dup {
			continue
		}

		container := img.Closest(containerSelector)
		alt := e.label(img, container)
		sourceURL, sourceTitle := e.sourceLink(doc, img, container, base)

		records = append(records, entity.ImageRecord{
			ImageURL:    src,
			Alt:         alt,
			Title:       alt,
			SourceURL:   sourceURL,
			SourceTitle: sourceTitle,
			NearbyText:  nearbyText(img, container),
			SearchQuery: query,
			CrawledAt:   e.now().UTC(),
		})
		seenURLs[src] = struct{}{}
	}

	return records
}

// candidates evaluates every discovery selector and unions the matches,
// deduplicating by element identity while preserving order.
func candidates(doc *goquery.Document) []*goquery.Selection {
	seen := make(map[*html.Node]struct{})
	var out []*goquery.Selection
	for _, sel := range imageSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			n := s.Get(0)
			if _, dup := seen[n]; dup {
				return
			}
			seen[n] = struct{}{}
			out = append(out, s)
		})
	}
	return out
}

// imageURL resolves the candidate's address: src first, then the lazy-load
// data attributes.
func imageURL(img *goquery.Selection) string {
	for _, attr := range []string{"src", "data-src", "data-lazy-src"} {
		if v, ok := img.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}

func usableImageURL(src string) bool {
	if len(src) <= minImageURLLen {
		return false
	}
	if strings.Contains(src, "data:image") {
		return false
	}
	for _, pat := range nonContentPatterns {
		if strings.Contains(src, pat) {
			return false
		}
	}
	return true
}

// label resolves the best-effort text label: the element's own attributes
// first, then the shortest meaningful text found inside the ancestor
// container. The result is always normalized.
func (e *Extractor) label(img, container *goquery.Selection) string {
	alt := ""
	for _, attr := range []string{"alt", "aria-label", "data-alt", "data-title"} {
		if v, ok := img.Attr(attr); ok && strings.TrimSpace(v) != "" {
			alt = v
			break
		}
	}

	if alt == "" && container.Length() > 0 {
		alt = shortestContainerText(container)
	}

	return NormalizeLabel(alt)
}

// shortestContainerText collects the label candidates from a container and
// picks the shortest one longer than 3 characters. Ties keep the first
// minimum encountered.
func shortestContainerText(container *goquery.Selection) string {
	cands := []string{
		container.Find("[aria-label]").First().AttrOr("aria-label", ""),
		container.Find("[title]").First().AttrOr("title", ""),
		strings.TrimSpace(container.Find("span").First().Text()),
		strings.TrimSpace(container.Find("div").First().Text()),
		strings.TrimSpace(container.Text()),
	}

	best := ""
	for _, c := range cands {
		if len(c) <= 3 {
			continue
		}
		if best == "" || len(c) < len(best) {
			best = c
		}
	}
	return best
}

// NormalizeLabel collapses whitespace runs to single spaces and caps the
// result at 100 characters, ellipsis included. Normalization is idempotent:
// applying it to an already-normalized label returns the label unchanged.
func NormalizeLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) > maxLabelLen {
		s = string(runes[:maxLabelLen-3]) + "..."
	}
	return s
}

// sourceLink resolves the page hosting the image: the container's link
// chain first, then an ancestor walk, then the document-wide proximity
// fallback. An empty sourceURL is a valid outcome.
func (e *Extractor) sourceLink(doc *goquery.Document, img, container *goquery.Selection, base *url.URL) (string, string) {
	if container.Length() > 0 {
		if u, t, ok := linkFromScope(container, base); ok {
			return u, t
		}
		parent := img.Parent()
		for depth := 0; depth < parentWalkDepth && parent.Length() > 0; depth++ {
			if u, t, ok := linkFromScope(parent, base); ok {
				return u, t
			}
			parent = parent.Parent()
		}
	}
	return proximityLink(doc, img, base)
}

// linkFromScope tries each link selector in order against scope and accepts
// the first whose first match resolves to an http address.
func linkFromScope(scope *goquery.Selection, base *url.URL) (string, string, bool) {
	for _, sel := range linkSelectors {
		link := scope.Find(sel).First()
		if link.Length() == 0 {
			continue
		}
		href := resolveHref(link, base)
		if !strings.HasPrefix(href, "http") {
			continue
		}
		title := link.AttrOr("title", "")
		if title == "" {
			title = strings.TrimSpace(link.Text())
		}
		if title == "" {
			title = link.AttrOr("aria-label", "")
		}
		return href, title, true
	}
	return "", "", false
}

// proximityLink scans all absolute-http links in the document and accepts
// the first one, in document order, whose on-screen top-left corner lies
// within 200px of the image's. Not the closest link: the first under the
// threshold.
func proximityLink(doc *goquery.Document, img *goquery.Selection, base *url.URL) (string, string) {
	ix, iy, ok := elementBox(img)
	if !ok {
		return "", ""
	}

	var sourceURL, sourceTitle string
	doc.Find(absoluteLinkSelector).EachWithBreak(func(_ int, link *goquery.Selection) bool {
		lx, ly, ok := elementBox(link)
		if !ok {
			return true
		}
		if math.Hypot(lx-ix, ly-iy) >= proximityRadius {
			return true
		}
		href := resolveHref(link, base)
		if !strings.HasPrefix(href, "http") {
			return true
		}
		sourceURL = href
		sourceTitle = link.AttrOr("title", "")
		if sourceTitle == "" {
			sourceTitle = strings.TrimSpace(link.Text())
		}
		return false
	})
	return sourceURL, sourceTitle
}

// nearbyText returns the container's trimmed text, falling back to the
// image's parent and then grandparent.
func nearbyText(img, container *goquery.Selection) string {
	text := ""
	if container.Length() > 0 {
		text = strings.TrimSpace(container.Text())
	}
	if text == "" {
		text = strings.TrimSpace(img.Parent().Text())
	}
	if text == "" {
		text = strings.TrimSpace(img.Parent().Parent().Text())
	}
	return text
}

// elementBox reads the geometry stamped onto the snapshot by the browser
// adapter. Elements that were never laid out carry no box.
func elementBox(s *goquery.Selection) (x, y float64, ok bool) {
	raw, found := s.Attr(BoxAttr)
	if !found {
		return 0, 0, false
	}
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return x, y, true
}

// resolveHref absolutizes a link's href against the page address, matching
// what a live browser reports for the href property.
func resolveHref(link *goquery.Selection, base *url.URL) string {
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return ""
	}
	if base == nil {
		return href
	}
	abs, err := utils.ToAbsoluteURL(base, strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return abs
}

// searchQuery echoes the q parameter from the page's own address.
func searchQuery(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("q")
}
