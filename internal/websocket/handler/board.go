// internal/websocket/handler/board.go
package handlers

import (
	"context"
	"fmt"
	"time"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"
	svc "studiodesk-service/internal/service/pipeline"
	ws "studiodesk-service/internal/websocket"

	"go.uber.org/zap"
)

// BoardService is the part of the pipeline controller the socket needs.
type BoardService interface {
	Board() pipeline.Board
	HandleDragEnd(ctx context.Context, actorID int64, ev pipeline.DragEvent) (*svc.MoveResult, error)
}

type BoardHandler struct {
	boards BoardService
	logger *zap.Logger
	now    func() time.Time
}

// MoveResultData is the outcome of a board:move as seen by the client that
// sent it. The board is rendered with that client's filters.
type MoveResultData struct {
	Moved      bool               `json:"moved"`
	LeadID     int64              `json:"lead_id"`
	From       lead.Status        `json:"from,omitempty"`
	To         lead.Status        `json:"to,omitempty"`
	Converted  bool               `json:"converted"`
	RolledBack bool               `json:"rolled_back"`
	Error      string             `json:"error,omitempty"`
	Board      pipeline.BoardView `json:"board"`
}

func NewBoardHandler(boards BoardService, logger *zap.Logger) *BoardHandler {
	return &BoardHandler{
		boards: boards,
		logger: logger,
		now:    time.Now,
	}
}

func (h *BoardHandler) SupportedEvents() []wstypes.EventType {
	return []wstypes.EventType{
		wstypes.EventTypeBoardGet,
		wstypes.EventTypeBoardFilter,
		wstypes.EventTypeBoardMove,
		wstypes.EventTypeColumnToggle,
	}
}

func (h *BoardHandler) HandleMessage(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	switch msg.Type {
	case wstypes.EventTypeBoardGet:
		client.SendBoard(wstypes.EventTypeBoardSnapshot, h.boards.Board(), h.now())
		return nil

	case wstypes.EventTypeBoardFilter:
		return h.handleFilter(client, msg)

	case wstypes.EventTypeBoardMove:
		return h.handleMove(ctx, client, msg)

	case wstypes.EventTypeColumnToggle:
		return h.handleToggle(client, msg)

	default:
		return fmt.Errorf("unsupported event type: %s", msg.Type)
	}
}

func (h *BoardHandler) handleFilter(client *ws.Client, msg *wstypes.WSMessage) error {
	var criteria pipeline.Criteria
	if len(msg.Data) > 0 {
		if err := msg.Decode(&criteria); err != nil {
			client.SendError("invalid_request", "Invalid filter criteria", err.Error())
			return nil
		}
	}

	client.SetCriteria(criteria)
	client.SendBoard(wstypes.EventTypeBoardSnapshot, h.boards.Board(), h.now())
	return nil
}

func (h *BoardHandler) handleMove(ctx context.Context, client *ws.Client, msg *wstypes.WSMessage) error {
	var ev pipeline.DragEvent
	if err := msg.Decode(&ev); err != nil {
		client.SendError("invalid_request", "Invalid drag event", err.Error())
		return nil
	}

	result, err := h.boards.HandleDragEnd(ctx, client.StaffID(), ev)
	if result == nil {
		client.SendError("move_failed", "Failed to move lead", err.Error())
		return nil
	}

	data := MoveResultData{
		Moved:      result.Moved,
		LeadID:     ev.LeadID,
		From:       result.From,
		To:         result.To,
		Converted:  result.Converted,
		RolledBack: result.RolledBack,
		Board:      client.Render(result.Board, h.now()),
	}
	if err != nil {
		data.Error = err.Error()
		h.logger.Warn("board move failed",
			zap.Int64("staff_id", client.StaffID()),
			zap.Int64("lead_id", ev.LeadID),
			zap.Error(err),
		)
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeMoveResult, data))
	return nil
}

func (h *BoardHandler) handleToggle(client *ws.Client, msg *wstypes.WSMessage) error {
	var req wstypes.ColumnToggleRequest
	if err := msg.Decode(&req); err != nil {
		client.SendError("invalid_request", "Invalid column toggle", err.Error())
		return nil
	}

	column := lead.Status(req.Column)
	var collapsed, ok bool
	if req.Collapsed != nil {
		collapsed, ok = *req.Collapsed, client.SetColumnCollapsed(column, *req.Collapsed)
	} else {
		collapsed, ok = client.ToggleColumn(column)
	}
	if !ok {
		client.SendError("unknown_column", "Unknown column", req.Column)
		return nil
	}

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeColumnToggled, wstypes.ColumnToggledData{
		Column:    req.Column,
		Collapsed: collapsed,
	}))
	client.SendBoard(wstypes.EventTypeBoardSnapshot, h.boards.Board(), h.now())
	return nil
}
