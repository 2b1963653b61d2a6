package entity

import "time"

// ImageRecord is one extracted result. ImageURL is the de-duplication key:
// within a single run no two records share the same ImageURL.
type ImageRecord struct {
	ImageURL    string    `json:"imageUrl"`
	Alt         string    `json:"alt"`
	Title       string    `json:"title"`
	SourceURL   string    `json:"sourceUrl"`
	SourceTitle string    `json:"sourceTitle"`
	NearbyText  string    `json:"nearbyText"`
	SearchQuery string    `json:"searchQuery"`
	CrawledAt   time.Time `json:"crawledAt"`
}

// Complete reports whether the record carries all best-effort fields the
// API response requires. Incomplete records are still persisted in batch mode.
func (r *ImageRecord) Complete() bool {
	return r.Alt != "" && r.SourceURL != "" && r.NearbyText != ""
}
