package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/protocol"
	"github.com/lukinoo0/Blazefield/internal/types"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// WebsocketClient represents a connected client
type WebsocketClient struct {
	ID     types.EntityID
	Conn   *websocket.Conn
	Server *GameServer

	send      chan []byte
	closeOnce sync.Once
	codec     protocol.Codec
	logger    zerolog.Logger
}

// Send encodes msg with the client's codec and queues it. A full queue
// drops the message. Prepared messages reuse their cached frame.
func (c *WebsocketClient) Send(msg protocol.Message) bool {
	data, err := protocol.Encode(c.codec, msg)
	if err != nil {
		c.logger.Error().Err(err).Str("type", msg.MessageType()).Msg("Error marshaling message")
		return false
	}

	select {
	case c.send <- data:
		return true
	default:
		c.logger.Debug().Uint64("id", uint64(c.ID)).Str("type", msg.MessageType()).Msg("Send buffer full, dropping message")
		return false
	}
}

func (c *WebsocketClient) closeSend() {
	c.closeOnce.Do(func() { close(c.send) })
}

func (c *WebsocketClient) readPump() {
	defer func() {
		select {
		case c.Server.unregister <- c:
		case <-c.Server.shutdown:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(config.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Uint64("id", uint64(c.ID)).Msg("WebSocket error")
			}
			break
		}

		codec := c.codec
		if messageType == websocket.TextMessage {
			codec = protocol.JSONCodec{}
		}

		msg, err := protocol.Decode(codec, data)
		if err != nil {
			c.Server.engine.Dropped(protocol.DropReason(err))
			c.logger.Debug().Err(err).Uint64("id", uint64(c.ID)).Msg("Dropping inbound message")
			continue
		}
		c.Server.engine.Handle(c.ID, msg)
	}
}

func (c *WebsocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	frameType := websocket.TextMessage
	if c.codec.Binary() {
		frameType = websocket.BinaryMessage
	}

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(frameType, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
