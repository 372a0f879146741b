package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/htarver/tidesat/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The stream carries no credentials and only order state
	CheckOrigin: func(r *http.Request) bool { return true },
}

// orderStatusEvent is one frame on the order stream
type orderStatusEvent struct {
	OrderID  string            `json:"order_id"`
	State    models.OrderState `json:"state,omitempty"`
	Terminal bool              `json:"terminal"`
	Error    string            `json:"error,omitempty"`
}

// handleOrderSocket streams order state transitions over a websocket,
// polling the orders API until the order reaches a terminal state or the
// client goes away.
func (s *Server) handleOrderSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}
	defer conn.Close()

	activeOrderStreams.Inc()
	defer activeOrderStreams.Dec()

	orderID := c.Param("id")
	s.log.Info("order stream opened", "order_id", orderID, "client", conn.RemoteAddr().String())

	// Reader goroutine surfaces client disconnects while we poll
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var lastState models.OrderState
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		order, err := s.orders.GetOrder(ctx, orderID)
		cancel()

		if err != nil {
			_ = conn.WriteJSON(orderStatusEvent{OrderID: orderID, Error: err.Error()})
			return
		}

		if order.State != lastState {
			lastState = order.State
			event := orderStatusEvent{
				OrderID:  orderID,
				State:    order.State,
				Terminal: order.State.Terminal(),
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		} else if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
			// Ping keeps idle connections alive between transitions
			return
		}

		if lastState.Terminal() {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "order complete")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(5*time.Second))
			return
		}

		select {
		case <-ticker.C:
		case <-done:
			s.log.Info("order stream closed by client", "order_id", orderID)
			return
		}
	}
}
