package models

import (
	"fmt"
	"time"
)

// ComplaintKind groups complaints for reporting.
type ComplaintKind string

const (
	ComplaintScam  ComplaintKind = "Scam"
	ComplaintOther ComplaintKind = "Other"
)

// ParseComplaintKind validates a complaint kind string from the boundary.
func ParseComplaintKind(s string) (ComplaintKind, error) {
	switch ComplaintKind(s) {
	case ComplaintScam:
		return ComplaintScam, nil
	case ComplaintOther:
		return ComplaintOther, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownComplaintKind, s)
}

// Complaint is an append-only customer complaint record.
type Complaint struct {
	Kind      ComplaintKind `json:"kind"`
	Details   string        `json:"details"`
	Timestamp time.Time     `json:"timestamp"`
}
