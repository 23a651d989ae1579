package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"livium-server/internal/engine"
	"livium-server/internal/network"
	"livium-server/pkg/api"
	"livium-server/pkg/logger"
)

// Настройки WebSocket
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между WebSocket-соединением и движком.
// Каждый клиент представляет одного игрока (senderId из первого сообщения).
type Client struct {
	game     *engine.GameService
	hub      *network.Broadcaster
	conn     *websocket.Conn
	send     chan api.OutboundMessage
	playerID string
}

func NewClient(game *engine.GameService, hub *network.Broadcaster, conn *websocket.Conn) *Client {
	return &Client{
		game: game,
		hub:  hub,
		conn: conn,
	}
}

// readPump читает входящие сообщения и отдает их движку.
// Первое сообщение фиксирует playerID соединения.
func (c *Client) readPump() {
	defer func() {
		if c.playerID != "" && c.send != nil {
			c.hub.Unregister(c.playerID, c.send)
		}
		if err := c.conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close failed in readPump")
		}
		if c.playerID != "" {
			logger.Log.WithField("player", c.playerID).Info("Client disconnected")
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logger.Log.WithError(err).Warn("failed to set read deadline")
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg api.InboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.WithError(err).Error("WS read error")
			}
			return
		}
		if err := msg.Validate(); err != nil {
			logger.Log.WithError(err).Debug("Dropping invalid inbound message")
			continue
		}

		// Привязка соединения к игроку по первому сообщению.
		if c.playerID == "" {
			c.playerID = msg.SenderID
			c.send = c.hub.Register(c.playerID)
			go c.writePump()
			logger.Log.WithFields(logrus.Fields{
				"player": c.playerID,
			}).Info("Client logged in")
		}

		out, err := c.game.HandleMessage(context.Background(), msg)
		if err != nil {
			logger.Log.WithError(err).Error("Engine rejected message")
			continue
		}
		if out.Text != "" {
			c.hub.SendTo(out)
		}
	}
}

// writePump отправляет исходящие сообщения + пинги.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.conn.Close(); err != nil {
			logger.Log.WithError(err).Debug("close failed in writePump")
		}
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logger.Log.WithError(err).Debug("write close failed")
				}
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				logger.Log.WithError(err).Debug("write json failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logger.Log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
