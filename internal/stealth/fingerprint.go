// Package stealth implements the human-behavior simulation layer: randomized
// browser fingerprints and the page interaction sequence that coaxes a
// lazy-loaded results grid into rendering without tripping bot detection.
package stealth

import (
	"math/rand"

	"github.com/user/image-crawler-service/internal/entity"
)

// Fixed candidate pools for the per-load browser identity. One entry of each
// pool is picked uniformly per page load and never reused across runs.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:122.0) Gecko/20100101 Firefox/122.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.2.1 Safari/605.1.15",
}

var viewports = []struct{ Width, Height int }{
	{1920, 1080},
	{1366, 768},
	{1440, 900},
	{1536, 864},
	{1280, 720},
}

var acceptLanguages = []string{
	"vi-VN,vi;q=0.9,en;q=0.8",
	"en-US,en;q=0.9",
	"vi-VN,vi;q=0.8,en;q=0.7",
}

// NewFingerprint picks a randomized identity from the fixed candidate sets.
func NewFingerprint(rng *rand.Rand) entity.Fingerprint {
	vp := viewports[rng.Intn(len(viewports))]
	return entity.Fingerprint{
		UserAgent:      userAgents[rng.Intn(len(userAgents))],
		ViewportWidth:  vp.Width,
		ViewportHeight: vp.Height,
		AcceptLanguage: acceptLanguages[rng.Intn(len(acceptLanguages))],
		ExtraHeaders: map[string]string{
			"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
			"Accept-Encoding":           "gzip, deflate, br",
			"Cache-Control":             "no-cache",
			"Pragma":                    "no-cache",
			"Sec-Ch-Ua":                 `"Not A(Brand";v="99", "Google Chrome";v="121", "Chromium";v="121"`,
			"Sec-Ch-Ua-Mobile":          "?0",
			"Sec-Ch-Ua-Platform":        `"Windows"`,
			"Sec-Fetch-Dest":            "document",
			"Sec-Fetch-Mode":            "navigate",
			"Sec-Fetch-Site":            "none",
			"Sec-Fetch-User":            "?1",
			"Upgrade-Insecure-Requests": "1",
		},
	}
}
