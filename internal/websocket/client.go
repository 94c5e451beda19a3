// internal/websocket/client.go
package websocket

import (
	"context"
	"sync"
	"time"

	"studiodesk-service/internal/domain/lead"
	"studiodesk-service/internal/domain/pipeline"
	wstypes "studiodesk-service/internal/domain/websocket"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// ClientAuth is what the hub learned from the access token.
type ClientAuth struct {
	StaffID   int64
	SessionID string
	Roles     []string
	Device    string
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	staffID   int64
	sessionID string
	roles     []string
	device    string

	subscriptions map[wstypes.ChannelType]bool
	subMutex      sync.RWMutex

	// per-client board presentation
	viewMu   sync.Mutex
	criteria pipeline.Criteria
	view     *pipeline.ViewState

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, auth *ClientAuth) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		staffID:       auth.StaffID,
		sessionID:     auth.SessionID,
		roles:         auth.Roles,
		device:        auth.Device,
		subscriptions: map[wstypes.ChannelType]bool{wstypes.ChannelPipeline: true, wstypes.ChannelSystem: true},
		view:          pipeline.NewViewState(),
		ctx:           ctx,
		cancel:        cancel,
	}
}

func (c *Client) StaffID() int64 {
	return c.staffID
}

func (c *Client) SessionID() string {
	return c.sessionID
}

func (c *Client) Context() context.Context {
	return c.ctx
}

func (c *Client) Subscribe(channel wstypes.ChannelType) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	c.subscriptions[channel] = true
}

func (c *Client) Unsubscribe(channel wstypes.ChannelType) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	delete(c.subscriptions, channel)
}

func (c *Client) IsSubscribed(channel wstypes.ChannelType) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()
	return c.subscriptions[channel]
}

func (c *Client) SetCriteria(criteria pipeline.Criteria) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	c.criteria = criteria
}

func (c *Client) Criteria() pipeline.Criteria {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.criteria
}

// ToggleColumn flips the collapsed state of a column for this client only.
func (c *Client) ToggleColumn(name lead.Status) (bool, bool) {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.view.Toggle(name)
}

func (c *Client) SetColumnCollapsed(name lead.Status, collapsed bool) bool {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.view.SetCollapsed(name, collapsed)
}

// Render filters the canonical board with the client's criteria and applies
// its collapsed columns.
func (c *Client) Render(board pipeline.Board, now time.Time) pipeline.BoardView {
	c.viewMu.Lock()
	defer c.viewMu.Unlock()
	return c.view.Render(pipeline.ApplyFilters(board, c.criteria, now))
}

// SendBoard renders board for this client and queues it.
func (c *Client) SendBoard(event wstypes.EventType, board pipeline.Board, now time.Time) {
	c.SendMessage(wstypes.NewMessage(event, c.Render(board, now)))
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read error", zap.Int64("staff_id", c.staffID), zap.Error(err))
			}
			return
		}
		c.handleMessage(message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	msg, err := wstypes.ParseMessage(data)
	if err != nil {
		c.SendError("invalid_message", "Failed to parse message", err.Error())
		return
	}

	handled, err := c.hub.HandleClientMessage(c.ctx, c, msg)
	if err != nil {
		c.SendError("handler_error", "Failed to process message", err.Error())
		return
	}
	if handled {
		return
	}

	switch msg.Type {
	case wstypes.EventTypePing:
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))

	case wstypes.EventTypeSubscribe, wstypes.EventTypeUnsubscribe:
		var req wstypes.SubscribeRequest
		if err := msg.Decode(&req); err != nil {
			c.SendError("invalid_subscription", "Invalid subscription request", err.Error())
			return
		}
		for _, channel := range req.Channels {
			if msg.Type == wstypes.EventTypeSubscribe {
				c.Subscribe(channel)
			} else {
				c.Unsubscribe(channel)
			}
		}
		c.SendMessage(wstypes.NewMessage(msg.Type, map[string]interface{}{
			"channels": req.Channels,
		}))

	default:
		c.SendError("unknown_event", "Unsupported event type", string(msg.Type))
	}
}

// SendMessage queues a frame. A client whose buffer is full is dropped.
func (c *Client) SendMessage(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		return
	}

	select {
	case <-c.ctx.Done():
	case c.send <- data:
	default:
		c.Close()
		if c.hub != nil {
			go c.hub.Unregister(c)
		}
	}
}

func (c *Client) SendError(code, message, details string) {
	c.SendMessage(wstypes.NewMessage(wstypes.EventTypeError, wstypes.ErrorData{
		Code:    code,
		Message: message,
		Details: details,
	}))
}

// Close stops the pumps. It is safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(c.cancel)
}
