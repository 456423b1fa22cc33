package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lukinoo0/Blazefield/internal/config"
	"github.com/lukinoo0/Blazefield/internal/game"
	"github.com/lukinoo0/Blazefield/internal/protocol"
	"github.com/lukinoo0/Blazefield/internal/types"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins; the game client is served elsewhere
	},
}

// GameServer tracks websocket clients and hands their traffic to the engine
type GameServer struct {
	engine     *game.Engine
	clients    map[types.EntityID]*WebsocketClient
	register   chan *WebsocketClient
	unregister chan *WebsocketClient
	shutdown   chan struct{}
	stopped    chan struct{}
	once       sync.Once
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewGameServer creates a new game server
func NewGameServer(engine *game.Engine, logger zerolog.Logger) *GameServer {
	return &GameServer{
		engine:     engine,
		clients:    make(map[types.EntityID]*WebsocketClient),
		register:   make(chan *WebsocketClient),
		unregister: make(chan *WebsocketClient),
		shutdown:   make(chan struct{}),
		stopped:    make(chan struct{}),
		logger:     logger,
	}
}

// Run processes client registration until Shutdown is called
func (gs *GameServer) Run() {
	defer close(gs.stopped)

	for {
		select {
		case <-gs.shutdown:
			gs.logger.Info().Msg("Game server loop shutting down...")
			return

		case client := <-gs.register:
			gs.registerClient(client)

		case client := <-gs.unregister:
			gs.unregisterClient(client)
		}
	}
}

// Shutdown stops the loop and closes every client connection
func (gs *GameServer) Shutdown() {
	gs.once.Do(func() {
		gs.logger.Info().Msg("Starting graceful shutdown...")
		close(gs.shutdown)
	})

	select {
	case <-gs.stopped:
	case <-time.After(time.Second):
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()

	gs.logger.Info().Int("clients", len(gs.clients)).Msg("Closing client connections...")
	for id, client := range gs.clients {
		gs.engine.Disconnect(id)
		client.Conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Server shutting down"),
			time.Now().Add(time.Second))
		client.closeSend()
		client.Conn.Close()
		delete(gs.clients, id)
	}

	gs.logger.Info().Msg("Graceful shutdown complete")
}

// ClientCount returns the number of registered clients
func (gs *GameServer) ClientCount() int {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	return len(gs.clients)
}

func (gs *GameServer) registerClient(client *WebsocketClient) {
	gs.mu.Lock()
	gs.clients[client.ID] = client
	count := len(gs.clients)
	gs.mu.Unlock()

	gs.logger.Info().
		Uint64("id", uint64(client.ID)).
		Str("codec", client.codec.Name()).
		Int("clients", count).
		Msg("Client registered")
}

func (gs *GameServer) unregisterClient(client *WebsocketClient) {
	gs.mu.Lock()
	_, exists := gs.clients[client.ID]
	if exists {
		delete(gs.clients, client.ID)
	}
	count := len(gs.clients)
	gs.mu.Unlock()

	if !exists {
		return
	}

	// The engine stops sending to a client once Disconnect returns
	gs.engine.Disconnect(client.ID)
	client.closeSend()

	gs.logger.Info().Uint64("id", uint64(client.ID)).Int("clients", count).Msg("Client left")
}

// HandleWebSocket handles WebSocket connections
func (gs *GameServer) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	select {
	case <-gs.shutdown:
		http.Error(w, "Server shutting down", http.StatusServiceUnavailable)
		return
	default:
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		gs.logger.Warn().Err(err).Msg("WebSocket upgrade error")
		return
	}

	// ?protocol=binary selects protobuf frames, ?protocol=msgpack msgpack frames
	codec := protocol.CodecFor(r.URL.Query().Get("protocol"))

	client := &WebsocketClient{
		Conn:   conn,
		Server: gs,
		send:   make(chan []byte, config.ClientSendBuffer),
		codec:  codec,
		logger: gs.logger,
	}
	client.ID = gs.engine.Connect(client)

	select {
	case gs.register <- client:
	case <-gs.shutdown:
		gs.engine.Disconnect(client.ID)
		conn.Close()
		return
	}

	gs.logger.Debug().
		Uint64("id", uint64(client.ID)).
		Str("remote", r.RemoteAddr).
		Bool("binary", codec.Binary()).
		Msg("New client connected")

	go client.writePump()
	go client.readPump()
}
