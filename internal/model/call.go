package model

import "time"

type CallStatus string

const (
	// StatusInitiated means the provider accepted and queued the call.
	// Completion of the call itself is not tracked here.
	StatusInitiated CallStatus = "completed-initiated"
	StatusFailed    CallStatus = "failed"
)

func (s CallStatus) String() string {
	return string(s)
}

func (s CallStatus) Valid() bool {
	return s == StatusInitiated || s == StatusFailed
}

// CallLogEntry is one call attempt as persisted in the log store.
// Immutable after append except the Error field, which the cleanup
// transform may rewrite.
type CallLogEntry struct {
	Number    string     `json:"number" db:"number"`
	Status    CallStatus `json:"status" db:"status"`
	Success   bool       `json:"success" db:"success"`
	Timestamp time.Time  `json:"timestamp" db:"created_at"`
	BatchID   string     `json:"batch_id,omitempty" db:"batch_id"`
	SID       string     `json:"call_sid,omitempty" db:"call_sid"`
	Error     string     `json:"error,omitempty" db:"error"`
}
