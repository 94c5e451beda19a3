// internal/handlers/lead/lead_handler.go
package lead

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/middleware"
	xerrors "studiodesk-service/internal/pkg/errors"
	"studiodesk-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the lead side of the pipeline controller.
type Service interface {
	GetLead(ctx context.Context, id int64) (*lead.Lead, error)
	LeadHistory(ctx context.Context, id int64) ([]lead.StatusChange, error)
	CreateLead(ctx context.Context, req *lead.CreateLeadRequest) (*lead.Lead, error)
	UpdateLead(ctx context.Context, actorID, id int64, req *lead.UpdateLeadRequest) (*lead.Lead, error)
	ListLeadSources(ctx context.Context) ([]lead.LeadSource, error)
	CreateLeadSource(ctx context.Context, name string) (*lead.LeadSource, error)
}

type LeadHandler struct {
	leads  Service
	logger *zap.Logger
}

func NewLeadHandler(leads Service, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		leads:  leads,
		logger: logger,
	}
}

// GetLead opens the detail of a card.
func (h *LeadHandler) GetLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	l, err := h.leads.GetLead(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "lead not found", err)
		return
	}

	response.Success(c, http.StatusOK, "lead retrieved", l)
}

func (h *LeadHandler) GetLeadHistory(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	history, err := h.leads.LeadHistory(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, "failed to load lead history", err)
		return
	}

	response.Success(c, http.StatusOK, "lead history retrieved", history)
}

func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req lead.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	l, err := h.leads.CreateLead(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create lead", zap.Error(err))
		response.FromError(c, "failed to create lead", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead created successfully", l)
}

func (h *LeadHandler) UpdateLead(c *gin.Context) {
	id, ok := leadID(c)
	if !ok {
		return
	}

	var req lead.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	l, err := h.leads.UpdateLead(c.Request.Context(), middleware.MustGetStaffID(c), id, &req)
	if err != nil {
		h.logger.Error("failed to update lead", zap.Int64("lead_id", id), zap.Error(err))
		response.FromError(c, "failed to update lead", err)
		return
	}

	response.Success(c, http.StatusOK, "lead updated successfully", l)
}

func (h *LeadHandler) ListLeadSources(c *gin.Context) {
	sources, err := h.leads.ListLeadSources(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to load lead sources", err)
		return
	}

	response.Success(c, http.StatusOK, "lead sources retrieved", sources)
}

func (h *LeadHandler) CreateLeadSource(c *gin.Context) {
	var req lead.CreateLeadSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	src, err := h.leads.CreateLeadSource(c.Request.Context(), req.Name)
	if err != nil {
		response.FromError(c, "failed to create lead source", err)
		return
	}

	response.Success(c, http.StatusCreated, "lead source created", src)
}

func leadID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.ValidationError(c, "invalid lead ID", fmt.Errorf("%w: %q", xerrors.ErrInvalidInput, c.Param("id")))
		return 0, false
	}
	return id, true
}
