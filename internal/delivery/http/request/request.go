package request

// CrawlImagesRequest is the task descriptor accepted by POST /api/crawl-images.
// Only url is required; the remaining fields default server-side.
type CrawlImagesRequest struct {
	URL                 string `json:"url"`
	MaxImages           int    `json:"maxImages"`
	DelayMin            int    `json:"delayMin"`
	DelayMax            int    `json:"delayMax"`
	MaxRequestsPerCrawl int    `json:"maxRequestsPerCrawl"`
}
