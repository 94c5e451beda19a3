// internal/domain/pipeline/board.go
package pipeline

import (
	"studiodesk-service/internal/domain/lead"
)

type Column struct {
	Name            lead.Status `json:"name"`
	Color           string      `json:"color"`
	BackgroundColor string      `json:"background_color"`
	Leads           []lead.Lead `json:"leads"`
}

// Board is the ordered set of pipeline columns.
type Board struct {
	Columns []Column `json:"columns"`
}

// Location addresses a card slot on the board.
type Location struct {
	Column lead.Status `json:"column"`
	Index  int         `json:"index"`
}

type columnStyle struct {
	color      string
	background string
}

var columnStyles = map[lead.Status]columnStyle{
	lead.StatusLead:     {color: "#b7950b", background: "#fef9e7"},
	lead.StatusFollowUp: {color: "#2471a3", background: "#ebf5fb"},
	lead.StatusWon:      {color: "#1e8449", background: "#e9f7ef"},
	lead.StatusLost:     {color: "#b03a2e", background: "#fdedec"},
}

// EmptyBoard returns the four fixed columns with no leads.
func EmptyBoard() Board {
	cols := make([]Column, 0, len(lead.Statuses))
	for _, s := range lead.Statuses {
		style := columnStyles[s]
		cols = append(cols, Column{
			Name:            s,
			Color:           style.color,
			BackgroundColor: style.background,
			Leads:           []lead.Lead{},
		})
	}
	return Board{Columns: cols}
}

// BuildBoard groups leads into the four columns keeping their relative order.
// Leads with an unknown status land in the Lead column.
func BuildBoard(leads []lead.Lead) Board {
	b := EmptyBoard()
	for _, l := range leads {
		l.Status = lead.NormalizeStatus(l.Status)
		idx := b.columnIndex(l.Status)
		b.Columns[idx].Leads = append(b.Columns[idx].Leads, l)
	}
	return b
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	cols := make([]Column, len(b.Columns))
	for i, c := range b.Columns {
		cols[i] = c
		cols[i].Leads = make([]lead.Lead, len(c.Leads))
		for j, l := range c.Leads {
			cols[i].Leads[j] = cloneLead(l)
		}
	}
	return Board{Columns: cols}
}

// Column returns the column with the given name.
func (b Board) Column(name lead.Status) (*Column, bool) {
	idx := b.columnIndex(name)
	if idx < 0 {
		return nil, false
	}
	return &b.Columns[idx], true
}

// Find returns the current location of a lead.
func (b Board) Find(leadID int64) (Location, bool) {
	for _, c := range b.Columns {
		for i, l := range c.Leads {
			if l.ID == leadID {
				return Location{Column: c.Name, Index: i}, true
			}
		}
	}
	return Location{}, false
}

// Leads flattens the board in column order.
func (b Board) Leads() []lead.Lead {
	var out []lead.Lead
	for _, c := range b.Columns {
		out = append(out, c.Leads...)
	}
	return out
}

// Len returns the number of leads on the board.
func (b Board) Len() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Leads)
	}
	return n
}

// LeadIDs returns the ids of a column's leads in display order.
func (b Board) LeadIDs(name lead.Status) []int64 {
	c, ok := b.Column(name)
	if !ok {
		return nil
	}
	ids := make([]int64, len(c.Leads))
	for i, l := range c.Leads {
		ids[i] = l.ID
	}
	return ids
}

func (b Board) columnIndex(name lead.Status) int {
	for i, c := range b.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

func cloneLead(l lead.Lead) lead.Lead {
	if l.FirstEnquiryDate != nil {
		t := *l.FirstEnquiryDate
		l.FirstEnquiryDate = &t
	}
	if l.NextFollowUpDate != nil {
		t := *l.NextFollowUpDate
		l.NextFollowUpDate = &t
	}
	return l
}
