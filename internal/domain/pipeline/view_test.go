package pipeline_test

import (
	"testing"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewStateToggle(t *testing.T) {
	v := pipeline.NewViewState()

	collapsed, ok := v.Toggle(lead.StatusLost)
	require.True(t, ok)
	assert.True(t, collapsed)
	assert.True(t, v.IsCollapsed(lead.StatusLost))

	collapsed, _ = v.Toggle(lead.StatusLost)
	assert.False(t, collapsed)

	_, ok = v.Toggle(lead.Status("Archive"))
	assert.False(t, ok)
}

func TestViewStateRenderHidesCollapsedCards(t *testing.T) {
	b := pipeline.BuildBoard([]lead.Lead{
		mkLead(1, lead.StatusLead), mkLead(2, lead.StatusLost), mkLead(3, lead.StatusLost),
	})
	v := pipeline.NewViewState()
	v.SetCollapsed(lead.StatusLost, true)

	view := v.Render(b)

	require.Len(t, view.Columns, 4)
	assert.False(t, view.Columns[0].Collapsed)
	assert.Len(t, view.Columns[0].Leads, 1)
	assert.True(t, view.Columns[3].Collapsed)
	assert.Equal(t, 2, view.Columns[3].Count)
	assert.Empty(t, view.Columns[3].Leads)

	// the source board keeps its cards
	assert.Len(t, b.Columns[3].Leads, 2)
}
