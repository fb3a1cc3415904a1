// internal/handlers/room_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jmcgill/statclash/internal/auth"
	"github.com/jmcgill/statclash/internal/game"
)

// wsClient is one live connection's presence on the server.
type wsClient struct {
	id     uuid.UUID
	out    chan []byte
	cancel func()
}

// write pushes data onto the client's out channel non-blockingly, dropping
// the message if the channel is full or closed.
func (cl *wsClient) write(log *logrus.Logger, data []byte) {
	select {
	case cl.out <- data:
	default:
		log.Warnf("ws: out channel for player %s full or closed, dropped message", cl.id)
	}
}

// RoomServer is the WebSocket adapter over the SessionGateway: it translates
// wire messages to gateway actions and fans the returned notices out to the
// affected players' connections. All game state lives behind the gateway.
type RoomServer struct {
	log     *logrus.Logger
	Gateway *SessionGateway

	clientsMu sync.Mutex
	clients   map[uuid.UUID]*wsClient
}

// NewRoomServer builds the adapter around an existing gateway.
func NewRoomServer(logger *logrus.Logger, gw *SessionGateway) *RoomServer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomServer{
		log:     logger,
		Gateway: gw,
		clients: make(map[uuid.UUID]*wsClient),
	}
}

// WSHandler upgrades the HTTP connection, establishes the guest identity and
// runs the read loop until the connection drops.
func (s *RoomServer) WSHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Resolve identity before the upgrade so a fresh guest cookie can
		// still be set on the handshake response.
		playerID, err := auth.EnsureGuest(w, r)
		if err != nil {
			s.log.Warnf("ws: guest auth failed: %v", err)
			http.Error(w, "authentication failed", http.StatusInternalServerError)
			return
		}

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"duel"},
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			s.log.Warnf("ws: accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if c.Subprotocol() != "duel" {
			c.Close(BadSubprotocolError, "client must speak the duel subprotocol")
			return
		}
		s.log.Infof("ws: player %s connected from %s", playerID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		cl := &wsClient{
			id:     playerID,
			out:    make(chan []byte, 16),
			cancel: cancel,
		}
		s.register(cl)

		go s.writePump(ctx, c, cl)
		s.readPump(ctx, c, cl)

		// Cleanup after the read loop exits. The disconnect sweep forfeits
		// any game in progress, so it only runs when this was still the
		// identity's live connection; a superseded connection leaves the
		// player's game with its replacement.
		if s.unregister(cl) {
			s.deliver(s.Gateway.Disconnect(playerID))
			s.log.Infof("ws: player %s disconnected", playerID)
		} else {
			s.log.Infof("ws: old connection for player %s closed after takeover", playerID)
		}
	}
}

// register adds the client, replacing (and tearing down) any previous
// connection holding the same player identity.
func (s *RoomServer) register(cl *wsClient) {
	s.clientsMu.Lock()
	old, ok := s.clients[cl.id]
	s.clients[cl.id] = cl
	s.clientsMu.Unlock()
	if ok && old != cl {
		s.log.Infof("ws: player %s re-established connection, dropping old one", cl.id)
		old.cancel()
	}
}

// unregister removes cl if it is still the registered connection for its
// identity and reports whether it was. False means a newer connection has
// taken the identity over in the meantime.
func (s *RoomServer) unregister(cl *wsClient) bool {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	if cur, ok := s.clients[cl.id]; ok && cur == cl {
		delete(s.clients, cl.id)
		return true
	}
	return false
}

// deliver marshals each notice once and pushes it to every addressed player
// that still has a live connection. Notices are scoped to room members; this
// never broadcasts beyond them.
func (s *RoomServer) deliver(notices []game.Notice) {
	for _, n := range notices {
		data, err := json.Marshal(n.Event)
		if err != nil {
			s.log.Errorf("ws: failed to marshal %s event: %v", n.Event.Type, err)
			continue
		}
		s.clientsMu.Lock()
		for _, id := range n.To {
			if cl, ok := s.clients[id]; ok {
				cl.write(s.log, data)
			}
		}
		s.clientsMu.Unlock()
	}
}

// readPump reads actions off the socket and dispatches them through the
// gateway until the connection closes or the context is cancelled.
func (s *RoomServer) readPump(ctx context.Context, c *websocket.Conn, cl *wsClient) {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				s.log.Infof("ws: connection closed normally for player %s", cl.id)
			} else if strings.Contains(err.Error(), "context canceled") {
				s.log.Infof("ws: context canceled for player %s", cl.id)
			} else {
				s.log.Warnf("ws: read error for player %s: %v", cl.id, err)
			}
			return
		}

		if typ != websocket.MessageText {
			s.log.Warnf("ws: non-text message type %d from player %s, ignoring", typ, cl.id)
			continue
		}

		var act Action
		if err := json.Unmarshal(data, &act); err != nil {
			s.log.Warnf("ws: invalid json from player %s: %v", cl.id, err)
			s.sendError(cl, "Invalid JSON format")
			continue
		}

		if act.Type == "ping" {
			cl.write(s.log, []byte(`{"type":"pong"}`))
			continue
		}

		s.deliver(s.Gateway.Handle(cl.id, act))
	}
}

// writePump drains the client's out channel onto the socket and keeps the
// connection alive with periodic pings. A failed write or ping exits the
// pump; the read loop then observes the closure and runs the disconnect
// sweep.
func (s *RoomServer) writePump(ctx context.Context, c *websocket.Conn, cl *wsClient) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-cl.out:
			if !ok {
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				s.log.Warnf("ws: write failed for player %s: %v", cl.id, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				s.log.Warnf("ws: ping failed for player %s, assuming disconnect: %v", cl.id, err)
				return
			}
		}
	}
}

func (s *RoomServer) sendError(cl *wsClient, msg string) {
	data, err := json.Marshal(map[string]string{"type": "error", "message": msg})
	if err != nil {
		return
	}
	cl.write(s.log, data)
}
