package engine

import (
	"fmt"
	"sync"
)

// WorldManager manages multiple worlds, each isolated from the others.
type WorldManager struct {
	mu     sync.RWMutex
	worlds map[WorldID]*World
}

// NewWorldManager creates a new world manager.
func NewWorldManager() *WorldManager {
	return &WorldManager{
		worlds: make(map[WorldID]*World),
	}
}

// CreateWorld creates a new world with the given ID and configuration.
// Returns an error if a world with that ID already exists.
func (wm *WorldManager) CreateWorld(id WorldID, cfg Config) (*World, error) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if _, exists := wm.worlds[id]; exists {
		return nil, fmt.Errorf("world with id %s already exists", id)
	}

	w := NewWorld(id, cfg)
	wm.worlds[id] = w
	return w, nil
}

// GetWorld retrieves a world by ID.
func (wm *WorldManager) GetWorld(id WorldID) (*World, bool) {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	w, exists := wm.worlds[id]
	return w, exists
}

// DeleteWorld stops and removes a world by ID.
// Returns an error if the world doesn't exist.
func (wm *WorldManager) DeleteWorld(id WorldID) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	w, exists := wm.worlds[id]
	if !exists {
		return fmt.Errorf("world with id %s does not exist", id)
	}

	w.Stop()
	delete(wm.worlds, id)
	return nil
}

// ListWorlds returns the IDs of all managed worlds.
func (wm *WorldManager) ListWorlds() []WorldID {
	wm.mu.RLock()
	defer wm.mu.RUnlock()

	ids := make([]WorldID, 0, len(wm.worlds))
	for id := range wm.worlds {
		ids = append(ids, id)
	}
	return ids
}

// StopAll stops every managed world. Used during server shutdown.
func (wm *WorldManager) StopAll() {
	wm.mu.RLock()
	defer wm.mu.RUnlock()
	for _, w := range wm.worlds {
		w.Stop()
	}
}
