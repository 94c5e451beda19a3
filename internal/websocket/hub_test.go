package websocket

import (
	"context"
	"testing"
	"time"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBoard() pipeline.Board {
	return pipeline.BuildBoard([]lead.Lead{
		{ID: 1, Name: "Amina Yusuf", MobileNumber: "0711000001", Status: lead.StatusLead},
		{ID: 2, Name: "Brian Ouma", MobileNumber: "0711000002", Status: lead.StatusLead},
		{ID: 3, Name: "Cheruto Kip", MobileNumber: "0711000003", Status: lead.StatusLost},
	})
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, zap.NewNop())
	h.now = func() time.Time { return time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC) }
	return h
}

func nextMessage(t *testing.T, c *Client) *wstypes.WSMessage {
	t.Helper()
	select {
	case data := <-c.send:
		msg, err := wstypes.ParseMessage(data)
		require.NoError(t, err)
		return msg
	default:
		t.Fatal("no message queued")
		return nil
	}
}

func TestRegisterSendsConnectedAndSnapshot(t *testing.T) {
	h := newTestHub(t)
	h.SetSnapshotSource(testBoard)
	c := NewClient(h, nil, &ClientAuth{StaffID: 5, SessionID: "jti-1"})

	h.registerClient(c)

	assert.Equal(t, wstypes.EventTypeConnected, nextMessage(t, c).Type)

	snap := nextMessage(t, c)
	assert.Equal(t, wstypes.EventTypeBoardSnapshot, snap.Type)
	var view pipeline.BoardView
	require.NoError(t, snap.Decode(&view))
	require.Len(t, view.Columns, 4)
	assert.Equal(t, 2, view.Columns[0].Count)
	assert.Equal(t, 1, h.TotalClients())
}

func TestDeliverRendersPerClientView(t *testing.T) {
	h := newTestHub(t)
	filtered := NewClient(h, nil, &ClientAuth{StaffID: 1, SessionID: "a"})
	collapsed := NewClient(h, nil, &ClientAuth{StaffID: 2, SessionID: "b"})
	h.registerClient(filtered)
	h.registerClient(collapsed)
	nextMessage(t, filtered)
	nextMessage(t, collapsed)

	filtered.SetCriteria(pipeline.Criteria{SearchTerm: "amina"})
	collapsed.SetColumnCollapsed(lead.StatusLost, true)

	board := testBoard()
	h.deliver(&BroadcastMessage{Channel: wstypes.ChannelPipeline, Event: wstypes.EventTypeBoardUpdated, Board: &board})

	var a, b pipeline.BoardView
	msgA := nextMessage(t, filtered)
	assert.Equal(t, wstypes.EventTypeBoardUpdated, msgA.Type)
	require.NoError(t, msgA.Decode(&a))
	require.NoError(t, nextMessage(t, collapsed).Decode(&b))

	assert.Len(t, a.Columns[0].Leads, 1)
	assert.Equal(t, int64(1), a.Columns[0].Leads[0].ID)
	assert.Empty(t, a.Columns[3].Leads)

	assert.Len(t, b.Columns[0].Leads, 2)
	assert.True(t, b.Columns[3].Collapsed)
	assert.Equal(t, 1, b.Columns[3].Count)
	assert.Empty(t, b.Columns[3].Leads)
}

func TestDeliverSkipsUnsubscribedClients(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(h, nil, &ClientAuth{StaffID: 1})
	h.registerClient(c)
	nextMessage(t, c)
	c.Unsubscribe(wstypes.ChannelPipeline)

	board := testBoard()
	h.deliver(&BroadcastMessage{Channel: wstypes.ChannelPipeline, Event: wstypes.EventTypeBoardUpdated, Board: &board})

	assert.Empty(t, c.send)
}

func TestForceLogoutClosesMatchingSession(t *testing.T) {
	h := newTestHub(t)
	keep := NewClient(h, nil, &ClientAuth{StaffID: 1, SessionID: "keep"})
	drop := NewClient(h, nil, &ClientAuth{StaffID: 1, SessionID: "drop"})
	h.registerClient(keep)
	h.registerClient(drop)

	h.ForceLogout(1, "drop", "logout")

	assert.Error(t, drop.Context().Err())
	assert.NoError(t, keep.Context().Err())
}

func TestUnregisterRemovesClient(t *testing.T) {
	h := newTestHub(t)
	c := NewClient(h, nil, &ClientAuth{StaffID: 3})
	h.registerClient(c)

	h.unregisterClient(c)
	h.unregisterClient(c)

	assert.Equal(t, 0, h.TotalClients())
	assert.Error(t, c.Context().Err())
}

func TestStoppedHubDoesNotBlockSenders(t *testing.T) {
	h := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := NewClient(h, nil, &ClientAuth{StaffID: 1, SessionID: "jti-1"})
	finished := make(chan bool, 1)
	go func() {
		h.Unregister(c)
		registered := h.Register(c)
		for i := 0; i < 300; i++ {
			h.PublishBoard(wstypes.EventTypeBoardUpdated, testBoard())
		}
		finished <- registered
	}()

	select {
	case registered := <-finished:
		assert.False(t, registered)
	case <-time.After(2 * time.Second):
		t.Fatal("sender blocked on a stopped hub")
	}
}
