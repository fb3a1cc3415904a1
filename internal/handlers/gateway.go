// internal/handlers/gateway.go
package handlers

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/jmcgill/statclash/internal/game"
)

// Inbound action types.
const (
	ActionJoin            = "join"
	ActionChooseAttribute = "chooseAttribute"
)

// DefaultRoomKey is used when a client joins with an empty room key.
const DefaultRoomKey = "room1"

// Action is one inbound client message, already decoded by the transport
// layer. Malformed shapes are a transport concern and never reach the
// gateway.
type Action struct {
	Type         string `json:"type"`
	RoomKey      string `json:"roomKey,omitempty"`
	AttributeKey string `json:"attributeKey,omitempty"`
}

// SessionGateway dispatches inbound actions to rooms and maps each connected
// player to at most one active room membership.
//
// A single mutex serializes every join, chooseAttribute and disconnect across
// all rooms, giving the strict one-at-a-time processing the engine's
// invariants rely on: a round resolution is atomic, and of two near
// simultaneous chooseAttribute presses the non-turn-holder's simply loses the
// turn check with no partial effect.
type SessionGateway struct {
	mu  sync.Mutex
	log *logrus.Logger

	registry       *game.RoomRegistry
	deal           game.DealFunc
	rng            *rand.Rand
	defaultRoomKey string

	// memberships maps player ID -> room key.
	memberships map[uuid.UUID]string
}

// NewSessionGateway wires a gateway around a fresh registry. deal is the card
// catalog adapter's partition operation.
func NewSessionGateway(logger *logrus.Logger, deal game.DealFunc, defaultRoomKey string) *SessionGateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if defaultRoomKey == "" {
		defaultRoomKey = DefaultRoomKey
	}
	return &SessionGateway{
		log:            logger,
		registry:       game.NewRoomRegistry(logger),
		deal:           deal,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		defaultRoomKey: defaultRoomKey,
		memberships:    make(map[uuid.UUID]string),
	}
}

// Handle processes one inbound action and returns the notifications to
// deliver. It never blocks on another player; every action completes
// synchronously against current state.
func (gw *SessionGateway) Handle(playerID uuid.UUID, act Action) []game.Notice {
	gw.mu.Lock()
	defer gw.mu.Unlock()

	switch act.Type {
	case ActionJoin:
		return gw.handleJoin(playerID, act.RoomKey)
	case ActionChooseAttribute:
		return gw.handleChoose(playerID, act)
	default:
		gw.log.Warnf("gateway: unknown action type %q from %s", act.Type, playerID)
		return nil
	}
}

// Disconnect removes the player from their room (if any), forfeiting a game
// in progress to the remaining member. Connection loss is a modeled lifecycle
// transition, not an error.
func (gw *SessionGateway) Disconnect(playerID uuid.UUID) []game.Notice {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return gw.leaveLocked(playerID)
}

func (gw *SessionGateway) handleJoin(playerID uuid.UUID, roomKey string) []game.Notice {
	key := strings.TrimSpace(roomKey)
	if key == "" {
		key = gw.defaultRoomKey
	}

	var notices []game.Notice
	// A player holds at most one membership; joining a different room leaves
	// the current one first (forfeiting a game in progress).
	if cur, ok := gw.memberships[playerID]; ok && cur != key {
		notices = append(notices, gw.leaveLocked(playerID)...)
	}

	room := gw.registry.GetOrCreate(key, func(key string) *game.Room {
		return game.NewRoom(key, gw.deal, gw.rng, gw.log)
	})
	notices = append(notices, room.Join(playerID)...)
	if room.Member(playerID) {
		gw.memberships[playerID] = key
	}
	return notices
}

func (gw *SessionGateway) handleChoose(playerID uuid.UUID, act Action) []game.Notice {
	key := act.RoomKey
	if key == "" {
		key = gw.memberships[playerID]
	}
	room, ok := gw.registry.Find(key)
	if !ok || !room.Member(playerID) {
		// Nonexistent room or non-member: targeted rejection, nothing mutated.
		gw.log.Warnf("gateway: chooseAttribute from %s rejected for room %q", playerID, key)
		return []game.Notice{{To: []uuid.UUID{playerID}, Event: game.Event{Type: game.EventNotYourTurn}}}
	}

	notices := room.ChooseAttribute(playerID, act.AttributeKey)
	if room.Status == game.StatusFinished {
		gw.dropRoomLocked(key, room)
	}
	return notices
}

// leaveLocked removes playerID from their room and cleans up the room when it
// finishes (forfeit) or empties. Assumes gw.mu is held.
func (gw *SessionGateway) leaveLocked(playerID uuid.UUID) []game.Notice {
	key, ok := gw.memberships[playerID]
	if !ok {
		return nil
	}
	delete(gw.memberships, playerID)

	room, ok := gw.registry.Find(key)
	if !ok {
		return nil
	}
	notices := room.Leave(playerID)
	if room.Status == game.StatusFinished || room.MemberCount() == 0 {
		gw.dropRoomLocked(key, room)
	}
	return notices
}

// dropRoomLocked removes a terminal or empty room from the registry along
// with any memberships still pointing at it. Assumes gw.mu is held.
func (gw *SessionGateway) dropRoomLocked(key string, room *game.Room) {
	for _, id := range room.MemberIDs() {
		if gw.memberships[id] == key {
			delete(gw.memberships, id)
		}
	}
	gw.registry.Remove(key)
}

// RoomSummary is the /rooms listing entry.
type RoomSummary struct {
	Key     string      `json:"key"`
	Members int         `json:"members"`
	Status  game.Status `json:"status"`
}

// RoomSummaries snapshots the active rooms for listing and debugging.
func (gw *SessionGateway) RoomSummaries() []RoomSummary {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	rooms := gw.registry.Rooms()
	out := make([]RoomSummary, 0, len(rooms))
	for key, r := range rooms {
		out = append(out, RoomSummary{Key: key, Members: r.MemberCount(), Status: r.Status})
	}
	return out
}
