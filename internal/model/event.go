// Package model defines the wire and storage shapes that flow through the
// ingestion -> queue -> worker pipeline.
package model

import "time"

// Kind enumerates the recognized event kinds a Submission may carry.
type Kind string

const (
	KindPurchase   Kind = "purchase"
	KindUserSignup Kind = "user_signup"
	KindPageView   Kind = "page_view"
	KindCustom     Kind = "custom"
)

// ValidKinds lists every kind submit() will accept.
var ValidKinds = map[Kind]bool{
	KindPurchase:   true,
	KindUserSignup: true,
	KindPageView:   true,
	KindCustom:     true,
}

// Submission is the structural payload a producer posts to /events. It is
// also the payload serialized into the QueueEntry so that raw and processed
// records can reconstruct it downstream.
type Submission struct {
	Fingerprint   string                 `json:"fingerprint"`
	CorrelationID string                 `json:"correlation_id,omitempty"`
	Kind          Kind                   `json:"kind"`
	SubjectID     string                 `json:"subject_id,omitempty"`
	OccurredAt    time.Time              `json:"occurred_at"`
	Properties    map[string]interface{} `json:"properties"`
}

// RawRecord is the audit row written exactly once by ingestion.
type RawRecord struct {
	ID          int64
	Fingerprint string
	Payload     Submission
	ReceivedAt  time.Time
}

// Enrichment holds the deterministic fields the worker computes at ENRICH.
type Enrichment struct {
	WorkerID string `json:"worker_id"`
	Tag      string `json:"tag,omitempty"`
}

// ProcessedRecord is the terminal success row written by a worker.
type ProcessedRecord struct {
	ID          int64
	Fingerprint string
	Kind        Kind
	SubjectID   string
	OccurredAt  time.Time
	Properties  map[string]interface{}
	ProcessedAt time.Time
	Status      string
	Enrichment  Enrichment
	RetryCount  int
}

// FailedRecord is an appended DLQ row. Fingerprint is intentionally not unique.
type FailedRecord struct {
	ID           int64
	Fingerprint  string
	Payload      Submission
	ErrorMessage string
	FailedAt     time.Time
	RetryCount   int
}

// QueueEntry is the delivery handle returned by the queue adapter.
type QueueEntry struct {
	EntryID string
	Payload Submission
}

const StatusCompleted = "completed"
