// Package runtime hosts the live fan-out machinery: the connection
// registry, the broadcaster and the dispatch coordinator. It orchestrates
// without containing domain rules.
package runtime

import (
	"comms-hub/contract"
	"comms-hub/domain"
	"sync"
)

type set map[domain.SessionID]struct{}

// sessionState is the back-pointer index for one live session: who owns it
// and which rooms it joined, so disconnect is O(1) amortized instead of a
// scan over every recipient.
type sessionState struct {
	recipientID string
	tenantID    string
	sink        contract.EventSink
	rooms       map[domain.RoomID]struct{}
}

// Registry tracks live sessions per recipient and per room. It is the only
// in-memory structure shared across transport goroutines; all mutation goes
// through its lock and nothing under the lock touches the network.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[domain.SessionID]*sessionState
	byRecipient map[string]set
	byRoom      map[domain.RoomID]set
}

var _ contract.IRegistry = (*Registry)(nil)

func NewRegistry() *Registry {
	return &Registry{
		sessions:    make(map[domain.SessionID]*sessionState),
		byRecipient: make(map[string]set),
		byRoom:      make(map[domain.RoomID]set),
	}
}

// Connect registers a new live session for a recipient and enrolls it into
// the tenant-wide room. A recipient may hold any number of concurrent
// sessions; connecting never displaces a sibling session.
func (r *Registry) Connect(id domain.SessionID, recipientID, tenantID string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[id] = &sessionState{
		recipientID: recipientID,
		tenantID:    tenantID,
		sink:        sink,
		rooms:       make(map[domain.RoomID]struct{}),
	}

	if _, ok := r.byRecipient[recipientID]; !ok {
		r.byRecipient[recipientID] = make(set)
	}
	r.byRecipient[recipientID][id] = struct{}{}

	r.joinRoomLocked(id, domain.TenantRoom(tenantID))
}

// JoinRoom adds the session to an ad-hoc room. Membership dies with the
// session; there is no explicit leave.
func (r *Registry) JoinRoom(id domain.SessionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joinRoomLocked(id, room)
}

func (r *Registry) joinRoomLocked(id domain.SessionID, room domain.RoomID) {
	state, ok := r.sessions[id]
	if !ok {
		return
	}
	state.rooms[room] = struct{}{}
	if _, ok := r.byRoom[room]; !ok {
		r.byRoom[room] = make(set)
	}
	r.byRoom[room][id] = struct{}{}
}

// Disconnect removes one session from its recipient's set and from every
// room it joined, using the session's own back-pointers. Empty entries are
// removed so a recipient is absent exactly when it has zero sessions.
// Disconnecting an unknown session is a no-op.
func (r *Registry) Disconnect(id domain.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.sessions[id]
	if !ok {
		return
	}
	delete(r.sessions, id)

	if siblings, ok := r.byRecipient[state.recipientID]; ok {
		delete(siblings, id)
		if len(siblings) == 0 {
			delete(r.byRecipient, state.recipientID)
		}
	}

	for room := range state.rooms {
		if members, ok := r.byRoom[room]; ok {
			delete(members, id)
			if len(members) == 0 {
				delete(r.byRoom, room)
			}
		}
	}
}

// SessionsFor returns a snapshot of the recipient's live sessions.
func (r *Registry) SessionsFor(recipientID string) map[domain.SessionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(r.byRecipient[recipientID])
}

// SessionsInRoom returns a snapshot of the room's live sessions.
func (r *Registry) SessionsInRoom(room domain.RoomID) map[domain.SessionID]contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot(r.byRoom[room])
}

func (r *Registry) snapshot(ids set) map[domain.SessionID]contract.EventSink {
	if len(ids) == 0 {
		return nil
	}
	sinks := make(map[domain.SessionID]contract.EventSink, len(ids))
	for id := range ids {
		if state, ok := r.sessions[id]; ok {
			sinks[id] = state.sink
		}
	}
	return sinks
}

// Drain empties the registry and returns every sink that was live, so the
// transport can force-close the connections on shutdown.
func (r *Registry) Drain() []contract.EventSink {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks := make([]contract.EventSink, 0, len(r.sessions))
	for _, state := range r.sessions {
		sinks = append(sinks, state.sink)
	}
	r.sessions = make(map[domain.SessionID]*sessionState)
	r.byRecipient = make(map[string]set)
	r.byRoom = make(map[domain.RoomID]set)
	return sinks
}
