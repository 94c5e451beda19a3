package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"
	handlers "studiodesk-service/internal/handlers/websocket"
	"studiodesk-service/internal/pkg/jwt"
	svc "studiodesk-service/internal/service/pipeline"
	ws "studiodesk-service/internal/websocket"
	wshandlers "studiodesk-service/internal/websocket/handler"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAuth struct{}

func (fakeAuth) ValidateToken(_ context.Context, token string) (*jwt.Claims, error) {
	if token != "good" {
		return nil, errors.New("bad token")
	}
	return &jwt.Claims{
		StaffID:          9,
		Roles:            []string{jwt.RoleStaff},
		RegisteredClaims: jwtlib.RegisteredClaims{ID: "jti-9"},
	}, nil
}

type fakeBoards struct {
	mu    sync.Mutex
	board pipeline.Board
	actor int64
}

func (f *fakeBoards) Board() pipeline.Board {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.board.Clone()
}

func (f *fakeBoards) Actor() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.actor
}

func (f *fakeBoards) HandleDragEnd(_ context.Context, actorID int64, ev pipeline.DragEvent) (*svc.MoveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actor = actorID

	next, moved, ok := f.board.Move(ev)
	if !ok {
		return &svc.MoveResult{Board: f.board.Clone()}, nil
	}
	f.board = next
	return &svc.MoveResult{
		Moved: true,
		Lead:  moved,
		From:  ev.Source.Column,
		To:    ev.Destination.Column,
		Board: next.Clone(),
	}, nil
}

func setup(t *testing.T) (*fakeBoards, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	boards := &fakeBoards{board: pipeline.BuildBoard([]lead.Lead{
		{ID: 1, Name: "Amina Yusuf", MobileNumber: "0711000001", Status: lead.StatusLead},
		{ID: 2, Name: "Brian Ouma", MobileNumber: "0711000002", Status: lead.StatusLead},
	})}

	hub := ws.NewHub(fakeAuth{}, zap.NewNop())
	hub.SetSnapshotSource(boards.Board)
	hub.RegisterHandler(wshandlers.NewBoardHandler(boards, zap.NewNop()))

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	router := gin.New()
	router.GET("/ws", handlers.NewWebSocketHandler(hub, nil, zap.NewNop()).HandleConnection)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return boards, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=good", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) wstypes.WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wstypes.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, event wstypes.EventType, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(wstypes.NewMessage(event, data)))
}

func readBoard(t *testing.T, conn *websocket.Conn, want wstypes.EventType) pipeline.BoardView {
	t.Helper()
	msg := read(t, conn)
	require.Equal(t, want, msg.Type)
	var view pipeline.BoardView
	require.NoError(t, msg.Decode(&view))
	return view
}

func TestConnectionRejectsMissingOrBadToken(t *testing.T) {
	_, url := setup(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=nope", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestConnectionReceivesSnapshot(t *testing.T) {
	_, url := setup(t)
	conn := dial(t, url)

	assert.Equal(t, wstypes.EventTypeConnected, read(t, conn).Type)
	view := readBoard(t, conn, wstypes.EventTypeBoardSnapshot)
	require.Len(t, view.Columns, 4)
	assert.Equal(t, 2, view.Columns[0].Count)
}

func TestBoardMoveRepliesWithResult(t *testing.T) {
	boards, url := setup(t)
	conn := dial(t, url)
	read(t, conn)
	read(t, conn)

	send(t, conn, wstypes.EventTypeBoardMove, pipeline.DragEvent{
		LeadID:      2,
		Source:      &pipeline.Location{Column: lead.StatusLead, Index: 1},
		Destination: &pipeline.Location{Column: lead.StatusFollowUp, Index: 0},
	})

	msg := read(t, conn)
	require.Equal(t, wstypes.EventTypeMoveResult, msg.Type)
	var result wshandlers.MoveResultData
	require.NoError(t, msg.Decode(&result))

	assert.True(t, result.Moved)
	assert.Equal(t, int64(2), result.LeadID)
	assert.Equal(t, lead.StatusFollowUp, result.To)
	require.Len(t, result.Board.Columns[1].Leads, 1)
	assert.Equal(t, int64(2), result.Board.Columns[1].Leads[0].ID)
	assert.Equal(t, int64(9), boards.Actor())
}

func TestBoardFilterAndColumnToggle(t *testing.T) {
	_, url := setup(t)
	conn := dial(t, url)
	read(t, conn)
	read(t, conn)

	send(t, conn, wstypes.EventTypeBoardFilter, pipeline.Criteria{SearchTerm: "amina"})
	view := readBoard(t, conn, wstypes.EventTypeBoardSnapshot)
	require.Len(t, view.Columns[0].Leads, 1)
	assert.Equal(t, int64(1), view.Columns[0].Leads[0].ID)

	send(t, conn, wstypes.EventTypeColumnToggle, wstypes.ColumnToggleRequest{Column: string(lead.StatusLead)})
	msg := read(t, conn)
	require.Equal(t, wstypes.EventTypeColumnToggled, msg.Type)
	var toggled wstypes.ColumnToggledData
	require.NoError(t, msg.Decode(&toggled))
	assert.True(t, toggled.Collapsed)

	view = readBoard(t, conn, wstypes.EventTypeBoardSnapshot)
	assert.True(t, view.Columns[0].Collapsed)
	assert.Equal(t, 1, view.Columns[0].Count)
	assert.Empty(t, view.Columns[0].Leads)

	send(t, conn, wstypes.EventTypeColumnToggle, wstypes.ColumnToggleRequest{Column: "Archive"})
	msg = read(t, conn)
	require.Equal(t, wstypes.EventTypeError, msg.Type)
	var e wstypes.ErrorData
	require.NoError(t, msg.Decode(&e))
	assert.Equal(t, "unknown_column", e.Code)
}

func TestPingAndUnknownEvent(t *testing.T) {
	_, url := setup(t)
	conn := dial(t, url)
	read(t, conn)
	read(t, conn)

	send(t, conn, wstypes.EventTypePing, nil)
	assert.Equal(t, wstypes.EventTypePong, read(t, conn).Type)

	send(t, conn, wstypes.EventType("lead:delete"), nil)
	assert.Equal(t, wstypes.EventTypeError, read(t, conn).Type)
}
