// internal/handlers/pipeline/pipeline_handler.go
package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	"studiodesk-service/internal/middleware"
	xerrors "studiodesk-service/internal/pkg/errors"
	"studiodesk-service/internal/pkg/response"
	svc "studiodesk-service/internal/service/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type Service interface {
	FilteredBoard(criteria pipeline.Criteria) pipeline.Board
	Reload(ctx context.Context) error
	HandleDragEnd(ctx context.Context, actorID int64, ev pipeline.DragEvent) (*svc.MoveResult, error)
}

type PipelineHandler struct {
	boards Service
	logger *zap.Logger
}

func NewPipelineHandler(boards Service, logger *zap.Logger) *PipelineHandler {
	return &PipelineHandler{
		boards: boards,
		logger: logger,
	}
}

// GetBoard returns the board narrowed by the query filters.
func (h *PipelineHandler) GetBoard(c *gin.Context) {
	criteria, err := ParseCriteria(c)
	if err != nil {
		response.ValidationError(c, "invalid filter", err)
		return
	}

	response.Success(c, http.StatusOK, "board retrieved", h.boards.FilteredBoard(criteria))
}

// Reload re-reads every lead from the database.
func (h *PipelineHandler) Reload(c *gin.Context) {
	if err := h.boards.Reload(c.Request.Context()); err != nil {
		response.FromError(c, "failed to reload board", fmt.Errorf("%w: %w", xerrors.ErrUnavailable, err))
		return
	}

	response.Success(c, http.StatusOK, "board reloaded", h.boards.FilteredBoard(pipeline.Criteria{}))
}

// Move applies a drop. A failed save still returns the rolled back board.
func (h *PipelineHandler) Move(c *gin.Context) {
	var ev pipeline.DragEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		response.ValidationError(c, "invalid drag event", err)
		return
	}

	result, err := h.boards.HandleDragEnd(c.Request.Context(), middleware.MustGetStaffID(c), ev)
	if err != nil {
		h.logger.Warn("lead move failed", zap.Int64("lead_id", ev.LeadID), zap.Error(err))
		if result != nil {
			response.FromError(c, "failed to move lead", err, result)
			return
		}
		response.FromError(c, "failed to move lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead moved", result)
}

type columnInfo struct {
	Name  lead.Status `json:"name"`
	Color string      `json:"color"`
	Count int         `json:"count"`
}

// Columns lists the fixed columns with their card counts.
func (h *PipelineHandler) Columns(c *gin.Context) {
	board := h.boards.FilteredBoard(pipeline.Criteria{})

	columns := make([]columnInfo, 0, len(board.Columns))
	for _, col := range board.Columns {
		columns = append(columns, columnInfo{Name: col.Name, Color: col.Color, Count: len(col.Leads)})
	}

	response.Success(c, http.StatusOK, "columns retrieved", columns)
}

// ParseCriteria reads board filters from the query string. Dates are
// YYYY-MM-DD or RFC 3339.
func ParseCriteria(c *gin.Context) (pipeline.Criteria, error) {
	var criteria pipeline.Criteria

	for _, f := range []struct {
		key string
		dst **time.Time
	}{
		{"date_range_start", &criteria.DateRangeStart},
		{"date_range_end", &criteria.DateRangeEnd},
	} {
		raw := strings.TrimSpace(c.Query(f.key))
		if raw == "" {
			continue
		}
		t, err := parseDate(raw)
		if err != nil {
			return criteria, fmt.Errorf("%w: %s: %v", xerrors.ErrInvalidInput, f.key, err)
		}
		*f.dst = &t
	}

	if raw := strings.TrimSpace(c.Query("follow_up_within_days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 0 {
			return criteria, fmt.Errorf("%w: follow_up_within_days must be a non-negative integer", xerrors.ErrInvalidInput)
		}
		criteria.FollowUpWithinDays = &days
	}

	criteria.LeadSource = strings.TrimSpace(c.Query("lead_source"))
	criteria.SearchTerm = c.Query("search")
	return criteria, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
