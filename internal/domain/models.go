package domain

import (
	"encoding/json"
	"time"
)

// MediaLink is an absolute URL taken from an anchor on the crawled page.
// It is expected, not guaranteed, to point at an audio file.
type MediaLink string

// DownloadTask pairs a link with the local path it will be written to.
// Index is the link's position in extraction order.
type DownloadTask struct {
	Index       int
	Link        MediaLink
	Destination string
}

// OutcomeStatus is the terminal state of a single download task.
type OutcomeStatus string

const (
	StatusSucceeded OutcomeStatus = "succeeded"
	StatusFailed    OutcomeStatus = "failed"
	StatusSkipped   OutcomeStatus = "skipped"
)

// DownloadOutcome is the typed result of one task.
type DownloadOutcome struct {
	Task     DownloadTask
	Status   OutcomeStatus
	Bytes    int64
	Err      error
	Duration time.Duration
}

// OK reports whether the file was written.
func (o DownloadOutcome) OK() bool {
	return o.Status == StatusSucceeded
}

// MarshalJSON renders Err as a string so outcomes can be returned by the API.
func (o DownloadOutcome) MarshalJSON() ([]byte, error) {
	var reason string
	if o.Err != nil {
		reason = o.Err.Error()
	}
	return json.Marshal(struct {
		Index       int           `json:"index"`
		URL         MediaLink     `json:"url"`
		Destination string        `json:"destination"`
		Status      OutcomeStatus `json:"status"`
		Bytes       int64         `json:"bytes"`
		Reason      string        `json:"reason,omitempty"`
		DurationMS  int64         `json:"duration_ms"`
	}{
		Index:       o.Task.Index,
		URL:         o.Task.Link,
		Destination: o.Task.Destination,
		Status:      o.Status,
		Bytes:       o.Bytes,
		Reason:      reason,
		DurationMS:  o.Duration.Milliseconds(),
	})
}

// HarvestReport is everything a single crawl-and-download run produced.
// ExtractErr is set when the page itself could not be fetched or parsed,
// which separates "extraction failed" from "page had no links".
type HarvestReport struct {
	RunID      string            `json:"run_id"`
	PageURL    string            `json:"page_url"`
	Links      []MediaLink       `json:"links"`
	Outcomes   []DownloadOutcome `json:"outcomes"`
	ExtractErr error             `json:"-"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

func (r *HarvestReport) Succeeded() int { return r.count(StatusSucceeded) }
func (r *HarvestReport) Failed() int    { return r.count(StatusFailed) }
func (r *HarvestReport) Skipped() int   { return r.count(StatusSkipped) }

func (r *HarvestReport) count(s OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// BytesWritten sums the size of every successful download.
func (r *HarvestReport) BytesWritten() int64 {
	var total int64
	for _, o := range r.Outcomes {
		if o.OK() {
			total += o.Bytes
		}
	}
	return total
}
