package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const resultsPageURL = "https://example.com/search?q=tile"

func newExtractorAt(t *testing.T, ts time.Time) *Extractor {
	t.Helper()
	e := NewExtractor()
	e.now = func() time.Time { return ts }
	return e
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestExtractDeduplicatesAndCaps(t *testing.T) {
	// 8 candidates, 3 of them sharing one resolved address: 6 unique
	// addresses, capped at 5 records.
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 8; i++ {
		n := i
		if i == 2 || i == 5 || i == 7 {
			n = 0 // duplicate of the first image
		}
		fmt.Fprintf(&b, `<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:%d" alt="img %d">`, n, i)
	}
	b.WriteString("</body></html>")

	records := NewExtractor().Extract(parseDoc(t, b.String()), resultsPageURL, 5)

	require.Len(t, records, 5)
	seen := make(map[string]bool)
	for _, r := range records {
		assert.False(t, seen[r.ImageURL], "duplicate imageUrl %s", r.ImageURL)
		seen[r.ImageURL] = true
		assert.Equal(t, "tile", r.SearchQuery)
	}
}

func TestExtractRespectsMaxImages(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, `<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:%d">`, i)
	}
	b.WriteString("</body></html>")

	records := NewExtractor().Extract(parseDoc(t, b.String()), resultsPageURL, 3)
	assert.Len(t, records, 3)
}

func TestExtractRejectsDataURIs(t *testing.T) {
	html := `<html><body>
		<div data-ved="1"><img src="data:image/png;base64,AAAA" alt="placeholder"></div>
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:real" alt="real">
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "https://encrypted-tbn0.gstatic.com/images?q=tbn:real", records[0].ImageURL)
}

func TestExtractRejectsShortAndNonContentURLs(t *testing.T) {
	html := `<html><body>
		<div data-ved="1"><img src="short.png"></div>
		<div data-ved="2"><img src="https://www.google.com/logos/doodle.png"></div>
		<div data-ved="3"><img src="https://www.google.com/tia/pixel.gif"></div>
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:kept">
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "https://encrypted-tbn0.gstatic.com/images?q=tbn:kept", records[0].ImageURL)
}

func TestExtractFallsBackToLazyLoadAttributes(t *testing.T) {
	html := `<html><body>
		<div data-ved="1"><img data-src="https://lh3.googleusercontent.com/lazy-one"></div>
		<div data-ved="2"><img data-lazy-src="https://lh3.googleusercontent.com/lazy-two"></div>
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 2)
	assert.Equal(t, "https://lh3.googleusercontent.com/lazy-one", records[0].ImageURL)
	assert.Equal(t, "https://lh3.googleusercontent.com/lazy-two", records[1].ImageURL)
}

func TestLabelPrefersElementAttributes(t *testing.T) {
	html := `<html><body>
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1" aria-label="from aria">
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:2" data-alt="from data-alt">
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:3" alt="native" aria-label="ignored">
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 3)
	assert.Equal(t, "from aria", records[0].Alt)
	assert.Equal(t, "from data-alt", records[1].Alt)
	assert.Equal(t, "native", records[2].Alt)
	assert.Equal(t, records[2].Alt, records[2].Title, "title mirrors alt")
}

func TestLabelFromContainerPicksShortestMeaningfulText(t *testing.T) {
	// The container offers several text candidates; the shortest one longer
	// than 3 characters wins.
	html := `<html><body>
		<div data-ved="1">
			<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1">
			<span>a much longer descriptive text</span>
			<div>ok</div>
			<div>short one</div>
		</div>
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	// span text beats the container blob; the two-char div is discarded.
	assert.Equal(t, "a much longer descriptive text", records[0].Alt)
}

func TestNormalizeLabelCollapsesAndTruncates(t *testing.T) {
	assert.Equal(t, "a b c", NormalizeLabel("  a \n\t b   c  "))

	long := strings.Repeat("x", 150)
	normalized := NormalizeLabel(long)
	assert.Len(t, normalized, 100)
	assert.True(t, strings.HasSuffix(normalized, "..."))
}

func TestNormalizeLabelIsIdempotent(t *testing.T) {
	inputs := []string{
		"  spaced   out  label ",
		strings.Repeat("word ", 40),
		"short",
		"",
	}
	for _, in := range inputs {
		once := NormalizeLabel(in)
		assert.Equal(t, once, NormalizeLabel(once), "input %q", in)
	}
}

func TestSourceLinkFromContainer(t *testing.T) {
	html := `<html><body>
		<div class="islrc">
			<a href="https://host.example.org/gallery" title="Gallery page">see more</a>
			<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1">
		</div>
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "https://host.example.org/gallery", records[0].SourceURL)
	assert.Equal(t, "Gallery page", records[0].SourceTitle)
}

func TestSourceLinkResolvesRelativeHrefs(t *testing.T) {
	// A relative href misses the absolute-http selector but is picked up by
	// the plain anchor selector and resolved against the page address.
	html := `<html><body>
		<div class="rg_l">
			<a href="/images/origin">origin</a>
			<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1">
		</div>
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "https://example.com/images/origin", records[0].SourceURL)
	assert.Equal(t, "origin", records[0].SourceTitle)
}

func TestSourceLinkWalksAncestors(t *testing.T) {
	// No link inside the container itself; one sits on an ancestor within
	// the bounded walk.
	html := `<html><body>
		<div>
			<a href="https://host.example.org/up">up here</a>
			<div data-ved="1">
				<span><img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1"></span>
			</div>
		</div>
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "https://host.example.org/up", records[0].SourceURL)
}

func TestSourceLinkProximityFallback(t *testing.T) {
	// No container at all: the first document-order link within 200px of
	// the image wins, even when a later link is closer.
	html := `<html><body>
		<a href="https://far.example.org/" data-crawl-box="900,900">far away</a>
		<a href="https://near.example.org/" title="near" data-crawl-box="180,150">near</a>
		<a href="https://nearer.example.org/" data-crawl-box="110,105">nearer but later</a>
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1" data-crawl-box="100,100">
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "https://near.example.org/", records[0].SourceURL)
	assert.Equal(t, "near", records[0].SourceTitle)
}

func TestSourceLinkEmptyWhenNothingQualifies(t *testing.T) {
	html := `<html><body>
		<a href="https://far.example.org/" data-crawl-box="900,900">far away</a>
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1" data-crawl-box="100,100">
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Empty(t, records[0].SourceURL)
	assert.Empty(t, records[0].SourceTitle)
}

func TestNearbyTextFallsBackToParents(t *testing.T) {
	html := `<html><body>
		<div>grandparent context<p><img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1"></p></div>
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, "grandparent context", records[0].NearbyText)
}

func TestExtractStampsCrawledAt(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	e := newExtractorAt(t, ts)

	html := `<html><body><img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:1"></body></html>`
	records := e.Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 1)
	assert.Equal(t, ts, records[0].CrawledAt)
}

func TestExtractPreservesDiscoveryOrder(t *testing.T) {
	// googleusercontent images come from the second selector, so they sort
	// after all encrypted-tbn matches regardless of document order.
	html := `<html><body>
		<img src="https://lh3.googleusercontent.com/first-in-document">
		<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:second-in-document">
	</body></html>`

	records := NewExtractor().Extract(parseDoc(t, html), resultsPageURL, 10)

	require.Len(t, records, 2)
	assert.Contains(t, records[0].ImageURL, "encrypted-tbn")
	assert.Contains(t, records[1].ImageURL, "googleusercontent")
}
