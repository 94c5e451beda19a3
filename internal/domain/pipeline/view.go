// internal/domain/pipeline/view.go
package pipeline

import "studiodesk-service/internal/domain/lead"

// ViewState holds one client's expand/collapse choices. It is never
// persisted and is not safe for concurrent use.
type ViewState struct {
	collapsed map[lead.Status]bool
}

func NewViewState() *ViewState {
	return &ViewState{collapsed: make(map[lead.Status]bool)}
}

// Toggle flips a column and returns its new state. ok is false for an
// unknown column.
func (v *ViewState) Toggle(name lead.Status) (collapsed bool, ok bool) {
	if !name.Valid() {
		return false, false
	}
	v.collapsed[name] = !v.collapsed[name]
	return v.collapsed[name], true
}

func (v *ViewState) SetCollapsed(name lead.Status, collapsed bool) bool {
	if !name.Valid() {
		return false
	}
	v.collapsed[name] = collapsed
	return true
}

func (v *ViewState) IsCollapsed(name lead.Status) bool {
	return v.collapsed[name]
}

// ColumnView is a column as one client sees it. Collapsed columns keep
// their count but carry no cards.
type ColumnView struct {
	Column
	Count     int  `json:"count"`
	Collapsed bool `json:"collapsed"`
}

type BoardView struct {
	Columns []ColumnView `json:"columns"`
}

// Render applies the view state to an already filtered board.
func (v *ViewState) Render(b Board) BoardView {
	out := BoardView{Columns: make([]ColumnView, 0, len(b.Columns))}
	for _, c := range b.Columns {
		cv := ColumnView{Column: c, Count: len(c.Leads), Collapsed: v.IsCollapsed(c.Name)}
		if cv.Collapsed {
			cv.Leads = []lead.Lead{}
		}
		out.Columns = append(out.Columns, cv)
	}
	return out
}
