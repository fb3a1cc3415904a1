// internal/game/registry.go
package game

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// RoomRegistry manages active rooms in memory, keyed by the user-chosen room
// key. Creation is lazy and idempotent per key; no two rooms ever exist for
// the same key at once.
//
// The registry is constructed once per process (or per test case) and handed
// to the SessionGateway rather than living in a package global.
type RoomRegistry struct {
	mu    sync.Mutex // protects access to the rooms map
	log   *logrus.Logger
	rooms map[string]*Room
}

// NewRoomRegistry initializes an empty registry.
func NewRoomRegistry(logger *logrus.Logger) *RoomRegistry {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &RoomRegistry{
		log:   logger,
		rooms: make(map[string]*Room),
	}
}

// GetOrCreate returns the room for key, building it with newRoom on first
// sight of the key.
func (s *RoomRegistry) GetOrCreate(key string, newRoom func(key string) *Room) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[key]; ok {
		return r
	}
	r := newRoom(key)
	s.rooms[key] = r
	s.log.Infof("registry: created room %s", key)
	return r
}

// Find returns the room for key, if one exists.
func (s *RoomRegistry) Find(key string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[key]
	return r, ok
}

// Remove deletes the room for key. Called only once a room has reached zero
// members or its terminal broadcast has been sent.
func (s *RoomRegistry) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[key]; ok {
		delete(s.rooms, key)
		s.log.Infof("registry: removed room %s", key)
	}
}

// Rooms returns a copy of the key->room map, for listing and debugging.
func (s *RoomRegistry) Rooms() map[string]*Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Room, len(s.rooms))
	for k, v := range s.rooms {
		out[k] = v
	}
	return out
}
