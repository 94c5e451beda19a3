// internal/service/pipeline/controller.go
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"
	xerrors "studiodesk-service/internal/pkg/errors"
	"studiodesk-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

const (
	reloadAttempts = 3
	reloadTimeout  = 10 * time.Second
)

// Controller owns the canonical board. Every change replaces the board
// value; a published board is never mutated afterwards.
type Controller struct {
	store     Store
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.RWMutex
	board pipeline.Board
	rev   uint64
}

// MoveResult describes what HandleDragEnd did.
type MoveResult struct {
	Moved      bool           `json:"moved"`
	Lead       *lead.Lead     `json:"lead,omitempty"`
	From       lead.Status    `json:"from,omitempty"`
	To         lead.Status    `json:"to,omitempty"`
	Converted  bool           `json:"converted"`
	RolledBack bool           `json:"rolled_back"`
	Board      pipeline.Board `json:"board"`
}

func NewController(store Store, publisher Publisher, logger *zap.Logger) *Controller {
	return &Controller{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		board:     pipeline.EmptyBoard(),
	}
}

// Load fetches the leads and builds the first board.
func (c *Controller) Load(ctx context.Context) error {
	return c.Reload(ctx)
}

// Reload rebuilds the board from the store. On failure the previous board
// stays in place. A snapshot that raced with a local move is fetched again.
func (c *Controller) Reload(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		c.mu.RLock()
		startRev := c.rev
		c.mu.RUnlock()

		leads, err := c.store.ListLeads(ctx)
		if err != nil {
			metrics.RecordReload(false)
			c.logger.Error("failed to load leads, keeping previous board", zap.Error(err))
			return fmt.Errorf("failed to load leads: %w", err)
		}
		board := pipeline.BuildBoard(leads)

		c.mu.Lock()
		if c.rev != startRev && attempt < reloadAttempts {
			c.mu.Unlock()
			c.logger.Debug("board changed during reload, fetching again", zap.Int("attempt", attempt))
			continue
		}
		c.board = board
		c.rev++
		c.mu.Unlock()

		metrics.RecordReload(true)
		c.logger.Debug("board reloaded", zap.Int("leads", board.Len()))
		c.publish(wstypes.EventTypeBoardReloaded, board)
		return nil
	}
}

// Board returns a copy of the canonical board.
func (c *Controller) Board() pipeline.Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.board.Clone()
}

// FilteredBoard returns the canonical board narrowed by criteria.
func (c *Controller) FilteredBoard(criteria pipeline.Criteria) pipeline.Board {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return pipeline.ApplyFilters(c.board, criteria, c.now())
}

// HandleDragEnd applies a drop optimistically, publishes it, then persists
// it. A persistence failure rolls the move back and returns an error
// wrapping ErrPersistFailed. A failed conversion is only logged.
func (c *Controller) HandleDragEnd(ctx context.Context, actorID int64, ev pipeline.DragEvent) (*MoveResult, error) {
	if ev.IsNoop() {
		return &MoveResult{Board: c.Board()}, nil
	}
	if !ev.Source.Column.Valid() || !ev.Destination.Column.Valid() {
		return nil, fmt.Errorf("%w: unknown column", xerrors.ErrInvalidInput)
	}

	c.mu.Lock()
	current, found := c.board.Find(ev.LeadID)
	if !found {
		c.mu.Unlock()
		return nil, fmt.Errorf("lead %d is not on the board: %w", ev.LeadID, xerrors.ErrNotFound)
	}
	// The drag started from a stale view; act on where the card really is.
	if current.Column != ev.Source.Column {
		ev.Source = &current
	}

	next, moved, ok := c.board.Move(ev)
	if !ok {
		c.mu.Unlock()
		return &MoveResult{Board: c.Board()}, nil
	}
	from := ev.Source.Column
	to := ev.Destination.Column
	placed, _ := next.Find(ev.LeadID)

	c.board = next
	c.rev++
	c.mu.Unlock()

	metrics.RecordMove(to.String())
	c.publish(wstypes.EventTypeBoardUpdated, next)

	mv := &lead.StatusMove{
		LeadID:    ev.LeadID,
		From:      from,
		To:        to,
		ChangedBy: actorID,
		Order: map[lead.Status][]int64{
			from: next.LeadIDs(from),
			to:   next.LeadIDs(to),
		},
	}

	result := &MoveResult{Moved: true, Lead: moved, From: from, To: to}

	if err := c.store.MoveLead(ctx, mv); err != nil {
		metrics.RecordPersistFailure()
		c.logger.Error("failed to persist lead move",
			zap.Int64("lead_id", ev.LeadID),
			zap.String("from", from.String()),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		result.RolledBack = c.rollback(ctx, ev.LeadID, placed, current)
		result.Board = c.Board()
		return result, fmt.Errorf("move lead %d: %w: %w", ev.LeadID, xerrors.ErrPersistFailed, err)
	}

	if to == lead.StatusWon && from != lead.StatusWon {
		result.Converted = c.convert(ctx, moved)
	}

	result.Board = c.Board()
	return result, nil
}

// rollback undoes a move whose persistence failed. When the lead is still in
// the column the move put it in it is sent back; otherwise a later change
// superseded the move and the board is reloaded from the store.
func (c *Controller) rollback(ctx context.Context, leadID int64, placed, previous pipeline.Location) bool {
	c.mu.Lock()
	current, found := c.board.Find(leadID)
	if found && current.Column == placed.Column {
		reverted, _, ok := c.board.Move(pipeline.DragEvent{
			LeadID:      leadID,
			Source:      &current,
			Destination: &previous,
		})
		if ok {
			c.board = reverted
			c.rev++
			c.mu.Unlock()

			metrics.RecordRollback("revert")
			c.logger.Warn("reverted lead move",
				zap.Int64("lead_id", leadID),
				zap.String("column", previous.Column.String()),
			)
			c.publish(wstypes.EventTypeBoardRolledBack, reverted)
			return true
		}
	}
	c.mu.Unlock()

	metrics.RecordRollback("reload")
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reloadTimeout)
	defer cancel()
	if err := c.Reload(rctx); err != nil {
		c.logger.Error("failed to reload board after rollback", zap.Int64("lead_id", leadID), zap.Error(err))
		return false
	}
	return true
}

// convert materializes the user record of a won lead. The store upserts on
// user_id so a repeated win writes nothing.
func (c *Controller) convert(ctx context.Context, l *lead.Lead) bool {
	u := l.ToUser(c.now())

	created, err := c.store.InsertUser(ctx, u)
	if err != nil {
		metrics.RecordConversion(false)
		c.logger.Error("failed to create user for won lead",
			zap.Int64("lead_id", l.ID),
			zap.String("user_id", u.UserID),
			zap.Error(err),
		)
		return false
	}

	metrics.RecordConversion(true)
	c.logger.Info("lead converted to user",
		zap.Int64("lead_id", l.ID),
		zap.String("user_id", u.UserID),
		zap.Bool("created", created),
	)
	return true
}

func (c *Controller) GetLead(ctx context.Context, id int64) (*lead.Lead, error) {
	return c.store.GetLead(ctx, id)
}

func (c *Controller) LeadHistory(ctx context.Context, id int64) ([]lead.StatusChange, error) {
	if _, err := c.store.GetLead(ctx, id); err != nil {
		return nil, err
	}
	return c.store.ListStatusHistory(ctx, id)
}

// CreateLead stores a new lead in the Lead column and reloads the board.
func (c *Controller) CreateLead(ctx context.Context, req *lead.CreateLeadRequest) (*lead.Lead, error) {
	name := strings.TrimSpace(req.Name)
	mobile := strings.TrimSpace(req.MobileNumber)
	if name == "" || mobile == "" {
		return nil, fmt.Errorf("%w: name and mobile number are required", xerrors.ErrInvalidInput)
	}

	l := &lead.Lead{
		Name:             name,
		MobileNumber:     mobile,
		LeadSource:       strings.TrimSpace(req.LeadSource),
		FirstEnquiryDate: req.FirstEnquiryDate,
		NextFollowUpDate: req.NextFollowUpDate,
		Remarks:          req.Remarks,
		Status:           lead.StatusLead,
	}
	if err := c.store.InsertLead(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	c.logger.Info("lead created", zap.Int64("lead_id", l.ID))
	c.reloadAfterMutation(ctx)
	return l, nil
}

// UpdateLead applies a partial edit. A status set through the form is
// validated and a first arrival in Customer Won converts the lead.
func (c *Controller) UpdateLead(ctx context.Context, actorID, id int64, req *lead.UpdateLeadRequest) (*lead.Lead, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", xerrors.ErrInvalidInput)
	}
	if req.Status != nil {
		if _, err := lead.ParseStatus(*req.Status); err != nil {
			return nil, err
		}
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", xerrors.ErrInvalidInput)
	}
	if req.MobileNumber != nil && strings.TrimSpace(*req.MobileNumber) == "" {
		return nil, fmt.Errorf("%w: mobile number cannot be empty", xerrors.ErrInvalidInput)
	}

	before, err := c.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.store.UpdateLead(ctx, id, req, actorID); err != nil {
		return nil, fmt.Errorf("failed to update lead %d: %w", id, err)
	}

	after, err := c.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}

	if after.Status == lead.StatusWon && before.Status != lead.StatusWon {
		c.convert(ctx, after)
	}

	c.reloadAfterMutation(ctx)
	return after, nil
}

func (c *Controller) ListLeadSources(ctx context.Context) ([]lead.LeadSource, error) {
	return c.store.ListLeadSources(ctx)
}

func (c *Controller) CreateLeadSource(ctx context.Context, name string) (*lead.LeadSource, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: lead source name is required", xerrors.ErrInvalidInput)
	}

	src, err := c.store.InsertLeadSource(ctx, name)
	if err != nil {
		return nil, err
	}

	c.reloadAfterMutation(ctx)
	return src, nil
}

// reloadAfterMutation keeps the write successful even when the follow-up
// reload fails; the previous board stays until the next reload.
func (c *Controller) reloadAfterMutation(ctx context.Context) {
	if err := c.Reload(ctx); err != nil {
		c.logger.Warn("board reload after mutation failed", zap.Error(err))
	}
}

func (c *Controller) publish(event wstypes.EventType, board pipeline.Board) {
	if c.publisher == nil {
		return
	}
	c.publisher.PublishBoard(event, board)
}
