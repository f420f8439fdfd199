package models

import "time"

// NormalizedRecord is the canonical result of one docket acquisition.
// It is the only value that crosses the engine boundary: callers persist,
// display, or re-queue records without knowing which strategy produced them.
//
// When Found is false all content fields are empty. SourceURL is populated
// whenever a network attempt was made, even if the attempt failed.
type NormalizedRecord struct {
	Jurisdiction     string            `json:"jurisdiction"`
	Identifier       string            `json:"identifier"`
	Found            bool              `json:"found"`
	Title            string            `json:"title,omitempty"`
	OrganizationName string            `json:"organization_name,omitempty"`
	FiledDate        string            `json:"filed_date,omitempty"`
	Status           string            `json:"status,omitempty"`
	Category         string            `json:"category,omitempty"`
	SourceURL        string            `json:"source_url,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`
	FetchedAt        time.Time         `json:"fetched_at"`
	ResponseTimeMs   int64             `json:"response_time_ms"`
}

// PartialRecord is what a jurisdiction parser extracts from raw page content.
// The engine merges it into a NormalizedRecord; parsers never see engine
// internals and never build full records themselves.
type PartialRecord struct {
	Title            string            `json:"title,omitempty"`
	OrganizationName string            `json:"organization_name,omitempty"`
	FiledDate        string            `json:"filed_date,omitempty"`
	Status           string            `json:"status,omitempty"`
	Category         string            `json:"category,omitempty"`
	Extra            map[string]string `json:"extra,omitempty"`

	// NotFound indicates the upstream page confirmed the docket does not
	// exist (e.g. a "no results" banner). Not an error condition.
	NotFound bool `json:"not_found,omitempty"`
}

// RawContent is the fetched page handed to parsers, regardless of whether it
// came from a plain HTTP GET or a rendered browser session.
type RawContent struct {
	Jurisdiction string            `json:"jurisdiction"`
	Identifier   string            `json:"identifier"`
	URL          string            `json:"url"`
	FinalURL     string            `json:"final_url,omitempty"`
	StatusCode   int               `json:"status_code"`
	Body         string            `json:"-"`
	Headers      map[string]string `json:"headers,omitempty"`
	FetchedAt    time.Time         `json:"fetched_at"`
	ResponseTime int64             `json:"response_time_ms"`
}

// AcquireRequest identifies one docket to acquire. Batch runs are just
// slices of these.
type AcquireRequest struct {
	Jurisdiction string `json:"jurisdiction"`
	Identifier   string `json:"identifier"`
}

// AcquireResult pairs a request with its outcome for batch reporting.
type AcquireResult struct {
	Request AcquireRequest    `json:"request"`
	Record  *NormalizedRecord `json:"record,omitempty"`
	Err     error             `json:"-"`
}
