// internal/service/pipeline/store.go
package pipeline

import (
	"context"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"
)

// Store is everything the controller reads from and writes to persistence.
type Store interface {
	ListLeads(ctx context.Context) ([]lead.Lead, error)
	GetLead(ctx context.Context, id int64) (*lead.Lead, error)
	InsertLead(ctx context.Context, l *lead.Lead) error
	UpdateLead(ctx context.Context, id int64, req *lead.UpdateLeadRequest, changedBy int64) error
	MoveLead(ctx context.Context, mv *lead.StatusMove) error
	InsertUser(ctx context.Context, u *lead.User) (bool, error)
	ListLeadSources(ctx context.Context) ([]lead.LeadSource, error)
	InsertLeadSource(ctx context.Context, name string) (*lead.LeadSource, error)
	ListStatusHistory(ctx context.Context, leadID int64) ([]lead.StatusChange, error)
}

// Publisher fans a new canonical board out to connected clients.
type Publisher interface {
	PublishBoard(event wstypes.EventType, board pipeline.Board)
}
