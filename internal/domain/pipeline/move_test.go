package pipeline_test

import (
	"testing"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loc(c lead.Status, i int) *pipeline.Location {
	return &pipeline.Location{Column: c, Index: i}
}

func TestMoveCancelledDragIsIdentity(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(1, lead.StatusLead)})

	next, moved, ok := b.Move(pipeline.DragEvent{LeadID: 1, Source: loc(lead.StatusLead, 0)})

	assert.False(t, ok)
	assert.Nil(t, moved)
	assert.Equal(t, b, next)
}

func TestMoveSameSlotIsIdentity(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(1, lead.StatusLead)})

	next, _, ok := b.Move(pipeline.DragEvent{
		LeadID:      1,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusLead, 0),
	})

	assert.False(t, ok)
	assert.Equal(t, b, next)
}

func TestMoveUnknownColumnIsIgnored(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(1, lead.StatusLead)})

	next, _, ok := b.Move(pipeline.DragEvent{
		LeadID:      1,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.Status("Archive"), 0),
	})

	assert.False(t, ok)
	assert.Equal(t, b, next)
}

func TestMoveAcrossColumnsInsertsAtIndex(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(1, lead.StatusLead), mkLead(2, lead.StatusFollowUp)})

	next, moved, ok := b.Move(pipeline.DragEvent{
		LeadID:      1,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusFollowUp, 0),
	})

	require.True(t, ok)
	assert.Empty(t, next.Columns[0].Leads)
	assert.Equal(t, []int64{1, 2}, ids(next.Columns[1].Leads))
	assert.Equal(t, lead.StatusFollowUp, next.Columns[1].Leads[0].Status)
	assert.Equal(t, 0, next.Columns[1].Leads[0].Position)
	assert.Equal(t, 1, next.Columns[1].Leads[1].Position)
	assert.Equal(t, int64(1), moved.ID)
	assert.Equal(t, lead.StatusFollowUp, moved.Status)

	// receiver untouched
	assert.Equal(t, []int64{1}, ids(b.Columns[0].Leads))
	assert.Equal(t, lead.StatusLead, b.Columns[0].Leads[0].Status)
}

func TestMoveToWon(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(7, lead.StatusLead), mkLead(8, lead.StatusWon)})

	next, moved, ok := b.Move(pipeline.DragEvent{
		LeadID:      7,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusWon, 1),
	})

	require.True(t, ok)
	assert.Equal(t, []int64{8, 7}, ids(next.Columns[2].Leads))
	assert.Equal(t, lead.StatusWon, moved.Status)
}

func TestMoveWithinColumnReorders(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{
		mkLead(1, lead.StatusLead), mkLead(2, lead.StatusLead), mkLead(3, lead.StatusLead),
	})

	next, _, ok := b.Move(pipeline.DragEvent{
		LeadID:      1,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusLead, 2),
	})

	require.True(t, ok)
	assert.Equal(t, []int64{2, 3, 1}, ids(next.Columns[0].Leads))
	for i, l := range next.Columns[0].Leads {
		assert.Equal(t, i, l.Position)
	}
}

func TestMoveClampsDestinationIndex(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(1, lead.StatusLead), mkLead(2, lead.StatusLost)})

	next, _, ok := b.Move(pipeline.DragEvent{
		LeadID:      1,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusLost, 40),
	})

	require.True(t, ok)
	assert.Equal(t, []int64{2, 1}, ids(next.Columns[3].Leads))
}

func TestMoveResolvesStaleSourceIndexByID(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{
		mkLead(1, lead.StatusLead), mkLead(2, lead.StatusLead), mkLead(3, lead.StatusLead),
	})

	// Index 0 in a filtered view, but lead 3 sits at index 2 on the full board.
	next, moved, ok := b.Move(pipeline.DragEvent{
		LeadID:      3,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusFollowUp, 0),
	})

	require.True(t, ok)
	assert.Equal(t, int64(3), moved.ID)
	assert.Equal(t, []int64{1, 2}, ids(next.Columns[0].Leads))
	assert.Equal(t, []int64{3}, ids(next.Columns[1].Leads))
}

func TestMoveMissingLeadIsIgnored(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{mkLead(1, lead.StatusLead)})

	next, _, ok := b.Move(pipeline.DragEvent{
		LeadID:      42,
		Source:      loc(lead.StatusLead, 0),
		Destination: loc(lead.StatusWon, 0),
	})

	assert.False(t, ok)
	assert.Equal(t, b, next)
}
