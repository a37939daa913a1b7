package collab

import (
	"maps"
	"slices"
	"sync"
)

type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

// Prune drops shapes that no longer exist from every selection.
func (pm *PresenceManager) Prune(exists func(pageID, shapeID string) bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for userID, p := range pm.presences {
		if len(p.Selection) == 0 {
			continue
		}
		next := *p
		next.Selection = slices.DeleteFunc(slices.Clone(p.Selection), func(id string) bool {
			return !exists(p.PageID, id)
		})
		pm.presences[userID] = &next
	}
}

func (pm *PresenceManager) GetAll() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

func (pm *PresenceManager) StateMessage() *Message {
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: pm.GetAll()})
}
