// internal/domain/pipeline/move.go
package pipeline

import (
	"studiodesk-service/internal/domain/lead"
)

// DragEvent is raised when a card is dropped. A nil Destination means the
// drag was cancelled.
type DragEvent struct {
	LeadID      int64     `json:"lead_id" binding:"required"`
	Source      *Location `json:"source" binding:"required"`
	Destination *Location `json:"destination"`
}

// IsNoop reports whether the event cannot change the board regardless of its
// contents.
func (e DragEvent) IsNoop() bool {
	if e.Source == nil || e.Destination == nil {
		return true
	}
	return e.Source.Column == e.Destination.Column && e.Source.Index == e.Destination.Index
}

// Move applies a drag event and returns the resulting board together with the
// moved lead. The receiver is left untouched. ok is false when the event is a
// no-op or cannot be resolved.
func (b Board) Move(ev DragEvent) (next Board, moved *lead.Lead, ok bool) {
	if ev.IsNoop() {
		return b, nil, false
	}

	srcIdx := b.columnIndex(ev.Source.Column)
	dstIdx := b.columnIndex(ev.Destination.Column)
	if srcIdx < 0 || dstIdx < 0 {
		return b, nil, false
	}

	next = b.Clone()
	src := &next.Columns[srcIdx]

	// The index comes from the client's view, which may be filtered. Fall back
	// to the lead id when the slot holds a different card.
	from := ev.Source.Index
	if from < 0 || from >= len(src.Leads) || src.Leads[from].ID != ev.LeadID {
		from = indexOf(src.Leads, ev.LeadID)
		if from < 0 {
			return b, nil, false
		}
	}

	card := src.Leads[from]
	src.Leads = append(src.Leads[:from], src.Leads[from+1:]...)
	card.Status = ev.Destination.Column

	dst := &next.Columns[dstIdx]
	to := ev.Destination.Index
	if to < 0 {
		to = 0
	}
	if to > len(dst.Leads) {
		to = len(dst.Leads)
	}
	dst.Leads = append(dst.Leads, lead.Lead{})
	copy(dst.Leads[to+1:], dst.Leads[to:])
	dst.Leads[to] = card

	renumber(src)
	if dst != src {
		renumber(dst)
	}

	movedCopy := dst.Leads[to]
	return next, &movedCopy, true
}

func indexOf(leads []lead.Lead, id int64) int {
	for i, l := range leads {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func renumber(c *Column) {
	for i := range c.Leads {
		c.Leads[i].Position = i
	}
}
