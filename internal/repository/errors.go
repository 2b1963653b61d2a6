package repository

import "errors"

var (
	// ErrNavigationFailed indicates the initial page load did not complete.
	ErrNavigationFailed = errors.New("navigation failed")
	// ErrCrawlTimeout indicates the per-page handler budget was exceeded.
	ErrCrawlTimeout = errors.New("crawl timed out")
)
