package entity

import "errors"

var (
	// ErrMissingURL is returned when a task has no target URL. No page is
	// ever created for such a task.
	ErrMissingURL = errors.New("task is missing the target url")

	ErrInvalidDelayBounds = errors.New("delayMin must not exceed delayMax")
)

// Default task values, applied when the input omits a field.
const (
	DefaultMaxImages           = 50
	DefaultDelayMinMS          = 5000
	DefaultDelayMaxMS          = 15000
	DefaultMaxRequestsPerCrawl = 100
)

// Task is the input configuration for one extraction run. It is built once
// from external input and never mutated afterwards.
type Task struct {
	TargetURL           string `json:"url"`
	MaxImages           int    `json:"maxImages"`
	DelayMinMS          int    `json:"delayMin"`
	DelayMaxMS          int    `json:"delayMax"`
	MaxRequestsPerCrawl int    `json:"maxRequestsPerCrawl"`
}

// ApplyDefaults fills unset numeric fields with their default values.
func (t *Task) ApplyDefaults() {
	if t.MaxImages <= 0 {
		t.MaxImages = DefaultMaxImages
	}
	if t.DelayMinMS <= 0 {
		t.DelayMinMS = DefaultDelayMinMS
	}
	if t.DelayMaxMS <= 0 {
		t.DelayMaxMS = DefaultDelayMaxMS
	}
	if t.MaxRequestsPerCrawl <= 0 {
		t.MaxRequestsPerCrawl = DefaultMaxRequestsPerCrawl
	}
}

// Validate checks the task invariants. A missing URL is a fatal input error.
func (t *Task) Validate() error {
	if t.TargetURL == "" {
		return ErrMissingURL
	}
	if t.DelayMinMS > t.DelayMaxMS {
		return ErrInvalidDelayBounds
	}
	return nil
}
