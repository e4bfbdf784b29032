package web

import (
	"encoding/json"
	"net/http"
	"time"

	"menuboard/internal/loader"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConnection streams view models to one browser.
type wsConnection struct {
	conn *websocket.Conn
	send chan []byte
	log  zerolog.Logger
}

// handleWebSocket sends the current view model and then one per transition
func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	ws := &wsConnection{
		conn: conn,
		send: make(chan []byte, 16),
		log:  s.log,
	}
	updates, unsubscribe := s.loader.Subscribe()

	go ws.forward(updates)
	go ws.writePump()
	go ws.readPump(unsubscribe)
}

// forward turns machine states into messages until the subscription closes.
func (c *wsConnection) forward(updates <-chan loader.State) {
	defer close(c.send)
	for state := range updates {
		data, err := json.Marshal(state.ViewModel())
		if err != nil {
			c.log.Error().Err(err).Msg("marshal view model")
			continue
		}
		select {
		case c.send <- data:
		default:
			c.log.Warn().Msg("websocket buffer full, dropping update")
		}
	}
}

// readPump only watches for the peer going away; clients send nothing.
func (c *wsConnection) readPump(unsubscribe func()) {
	defer func() {
		unsubscribe()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("websocket closed")
			}
			return
		}
	}
}

func (c *wsConnection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
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
