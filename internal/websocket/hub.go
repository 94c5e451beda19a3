// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"
	"time"

	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"
	"studiodesk-service/internal/pkg/jwt"
	"studiodesk-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Authenticator validates access tokens presented on upgrade.
type Authenticator interface {
	ValidateToken(ctx context.Context, token string) (*jwt.Claims, error)
}

type Hub struct {
	clients map[int64]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	done       chan struct{}

	handlerRegistry *HandlerRegistry

	auth     Authenticator
	snapshot func() pipeline.Board
	logger   *zap.Logger
	now      func() time.Time
}

// BroadcastMessage carries either a ready message or a board that is
// rendered per client.
type BroadcastMessage struct {
	StaffIDs []int64
	Channel  wstypes.ChannelType
	Message  *wstypes.WSMessage
	Event    wstypes.EventType
	Board    *pipeline.Board
}

func NewHub(auth Authenticator, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[int64]map[*Client]bool),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		done:            make(chan struct{}),
		handlerRegistry: NewHandlerRegistry(),
		auth:            auth,
		logger:          logger,
		now:             time.Now,
	}
}

// SetSnapshotSource sets where new clients get their first board from.
func (h *Hub) SetSnapshotSource(fn func() pipeline.Board) {
	h.snapshot = fn
}

func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.auth.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}

	return &ClientAuth{
		StaffID:   claims.StaffID,
		SessionID: claims.ID,
		Roles:     claims.Roles,
		Device:    claims.Device,
	}, nil
}

func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage dispatches to a registered handler. handled is false
// when no handler owns the event type.
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

// Run serves the hub until ctx is cancelled. Senders never block on a
// stopped hub.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Register hands a connected client to the hub. It returns false once the
// hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// PublishBoard implements the controller's publisher.
func (h *Hub) PublishBoard(event wstypes.EventType, board pipeline.Board) {
	msg := &BroadcastMessage{
		Channel: wstypes.ChannelPipeline,
		Event:   event,
		Board:   &board,
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// ForceLogout tells a staff member's clients that a session ended and
// drops the ones bound to it. An empty sessionID matches every session.
func (h *Hub) ForceLogout(staffID int64, sessionID, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		SessionID: sessionID,
		Reason:    reason,
		Message:   "You have been logged out",
	})

	h.mu.RLock()
	var victims []*Client
	for client := range h.clients[staffID] {
		if sessionID == "" || client.sessionID == sessionID {
			client.SendMessage(msg)
			victims = append(victims, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range victims {
		client.Close()
	}
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	if h.clients[client.staffID] == nil {
		h.clients[client.staffID] = make(map[*Client]bool)
	}
	h.clients[client.staffID][client] = true
	total := h.totalClients()
	h.mu.Unlock()

	metrics.ClientConnected()
	h.logger.Info("board client connected",
		zap.Int64("staff_id", client.staffID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", total),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"staff_id":   client.staffID,
		"session_id": client.sessionID,
		"roles":      client.roles,
		"device":     client.device,
	}))
	if h.snapshot != nil {
		client.SendBoard(wstypes.EventTypeBoardSnapshot, h.snapshot(), h.now())
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.staffID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}

	delete(clients, client)
	client.Close()
	if len(clients) == 0 {
		delete(h.clients, client.staffID)
	}

	metrics.ClientDisconnected()
	h.logger.Info("board client disconnected",
		zap.Int64("staff_id", client.staffID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)
}

func (h *Hub) deliver(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	send := func(client *Client) {
		if !client.IsSubscribed(msg.Channel) {
			return
		}
		if msg.Board != nil {
			client.SendBoard(msg.Event, *msg.Board, h.now())
			return
		}
		client.SendMessage(msg.Message)
	}

	if msg.StaffIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				send(client)
			}
		}
		return
	}

	for _, id := range msg.StaffIDs {
		for client := range h.clients[id] {
			send(client)
		}
	}
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.Close()
		}
	}
}
