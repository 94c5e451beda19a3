// internal/domain/pipeline/filter.go
package pipeline

import (
	"strings"
	"time"

	"studiodesk-service/internal/domain/lead"
)

// Criteria narrows the displayed board. Zero values switch a filter off.
type Criteria struct {
	DateRangeStart     *time.Time `json:"date_range_start,omitempty"`
	DateRangeEnd       *time.Time `json:"date_range_end,omitempty"`
	LeadSource         string     `json:"lead_source,omitempty"`
	FollowUpWithinDays *int       `json:"follow_up_within_days,omitempty"`
	SearchTerm         string     `json:"search_term,omitempty"`
}

// IsZero reports whether no filter is active.
func (c Criteria) IsZero() bool {
	return !c.dateRangeActive() && c.LeadSource == "" &&
		c.FollowUpWithinDays == nil && strings.TrimSpace(c.SearchTerm) == ""
}

func (c Criteria) dateRangeActive() bool {
	return c.DateRangeStart != nil && c.DateRangeEnd != nil
}

// ApplyFilters returns a filtered copy of board. The input is never modified.
func ApplyFilters(board Board, c Criteria, now time.Time) Board {
	out := board.Clone()
	if c.IsZero() {
		return out
	}

	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))
	for i := range out.Columns {
		kept := make([]lead.Lead, 0, len(out.Columns[i].Leads))
		for _, l := range out.Columns[i].Leads {
			if c.matches(l, term, now) {
				kept = append(kept, l)
			}
		}
		out.Columns[i].Leads = kept
	}
	return out
}

func (c Criteria) matches(l lead.Lead, term string, now time.Time) bool {
	if c.dateRangeActive() {
		from := c.DateRangeStart.AddDate(0, 0, -1)
		to := c.DateRangeEnd.AddDate(0, 0, 1)
		if l.CreatedAt.Before(from) || l.CreatedAt.After(to) {
			return false
		}
	}

	if c.LeadSource != "" && l.LeadSource != c.LeadSource {
		return false
	}

	if c.FollowUpWithinDays != nil {
		if l.NextFollowUpDate == nil {
			return false
		}
		diff := DaysBetween(now, *l.NextFollowUpDate)
		if diff < 0 || diff > *c.FollowUpWithinDays {
			return false
		}
	}

	if term != "" {
		name := strings.ToLower(l.Name)
		mobile := strings.ToLower(l.MobileNumber)
		if !strings.Contains(name, term) && !strings.Contains(mobile, term) {
			return false
		}
	}

	return true
}

// DaysBetween returns the signed number of calendar days from a to b. Both
// instants are read as UTC dates so the server's zone never shifts a day.
func DaysBetween(a, b time.Time) int {
	y1, m1, d1 := a.UTC().Date()
	y2, m2, d2 := b.UTC().Date()
	from := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	to := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
