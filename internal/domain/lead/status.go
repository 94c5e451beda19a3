// internal/domain/lead/status.go
package lead

import (
	"fmt"

	xerrors "studiodesk-service/internal/pkg/errors"
)

// Status is the pipeline stage of a lead. The set of values is closed.
type Status string

const (
	StatusLead     Status = "Lead"
	StatusFollowUp Status = "Follow-up"
	StatusWon      Status = "Customer Won"
	StatusLost     Status = "Customer Lost"
)

// Statuses lists every stage in board order.
var Statuses = []Status{StatusLead, StatusFollowUp, StatusWon, StatusLost}

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the four known stages.
func (s Status) Valid() bool {
	switch s {
	case StatusLead, StatusFollowUp, StatusWon, StatusLost:
		return true
	}
	return false
}

// ParseStatus validates a raw status at the write boundary.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: unknown lead status %q", xerrors.ErrInvalidInput, raw)
	}
	return s, nil
}

// NormalizeStatus maps rows written before the status was validated onto the
// Lead stage.
func NormalizeStatus(s Status) Status {
	if s.Valid() {
		return s
	}
	return StatusLead
}
