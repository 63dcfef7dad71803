package model

import "time"

// Run records one batch: what was asked for and what came out of it.
type Run struct {
	ID string `json:"id" db:"id"`

	// StartedAt and FinishedAt bracket the batch. FinishedAt is nil
	// while the run is in progress or when it crashed.
	StartedAt  time.Time  `json:"started_at" db:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty" db:"finished_at"`

	// Since is the watermark the batch searched from; Watermark is the
	// one it advanced to (equal to Since when the run failed).
	Since     time.Time `json:"since" db:"since"`
	Watermark time.Time `json:"watermark" db:"watermark"`

	Found    int `json:"found" db:"found"`
	Parsed   int `json:"parsed" db:"parsed"`
	Rejected int `json:"rejected" db:"rejected"`

	// Error is the run-level failure, empty on success.
	Error string `json:"error,omitempty" db:"error"`
}

// Rejection is a message that produced no listing.
type Rejection struct {
	MessageID string `json:"message_id" db:"message_id"`
	UID       uint32 `json:"uid" db:"uid"`
	Subject   string `json:"subject" db:"subject"`

	// Kind is "structural" or "numeric".
	Kind   string `json:"kind" db:"kind"`
	Reason string `json:"reason" db:"reason"`
}

// Rejection kinds.
const (
	RejectionStructural = "structural"
	RejectionNumeric    = "numeric"
)
