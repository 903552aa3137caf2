package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"starlit/starlit/utils/logging"

	"go.uber.org/zap"
)

// Conn is one live subscriber connection. The websocket route wraps a real
// socket in this; tests use in-memory fakes.
type Conn interface {
	Send(ctx context.Context, payload []byte) error
	Close()
}

const sendTimeout = 5 * time.Second

// Registry maps a user id to the set of live connections subscribed to that
// user's notifications. It is the single fan-out target for the ingestion
// path: membership changes come from the ws route (join / disconnect), reads
// come from Publish, and both may interleave freely.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[int]map[Conn]struct{}
	byConn map[Conn]int
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[int]map[Conn]struct{}),
		byConn: make(map[Conn]int),
	}
}

// Join registers conn under userID's room. Joining twice is a no-op; a conn
// already in another room is moved (one room per connection).
func (r *Registry) Join(conn Conn, userID int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.byConn[conn]; ok {
		if prev == userID {
			return
		}
		r.removeLocked(conn, prev)
	}
	room, ok := r.rooms[userID]
	if !ok {
		room = make(map[Conn]struct{})
		r.rooms[userID] = room
	}
	room[conn] = struct{}{}
	r.byConn[conn] = userID
}

// Leave removes conn from whatever room it is in. Unregistered conns are
// ignored. Called from the ws route's disconnect cleanup, never explicitly
// by the client.
func (r *Registry) Leave(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userID, ok := r.byConn[conn]
	if !ok {
		return
	}
	r.removeLocked(conn, userID)
}

func (r *Registry) removeLocked(conn Conn, userID int) {
	delete(r.byConn, conn)
	if room, ok := r.rooms[userID]; ok {
		delete(room, conn)
		if len(room) == 0 {
			delete(r.rooms, userID)
		}
	}
}

// Members reports how many connections are currently joined under userID.
func (r *Registry) Members(userID int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[userID])
}

// Publish delivers payload to every connection currently in userID's room
// and returns how many sends succeeded. Delivery is at-most-once and
// best-effort: a failed send is logged and skipped, it does not abort the
// remaining sends and is never surfaced to the publisher. A dead conn is
// left for its read loop to detect and Leave.
func (r *Registry) Publish(ctx context.Context, userID int, payload interface{}) int {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.ErrorLogger.Error("publish marshal error", zap.Error(err), zap.Int("user_id", userID))
		return 0
	}

	r.mu.RLock()
	conns := make([]Conn, 0, len(r.rooms[userID]))
	for conn := range r.rooms[userID] {
		conns = append(conns, conn)
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
		err := conn.Send(sendCtx, data)
		cancel()
		if err != nil {
			logging.ErrorLogger.Error("publish delivery error", zap.Error(err), zap.Int("user_id", userID))
			continue
		}
		delivered++
	}
	return delivered
}

// Teardown closes every registered connection and empties the registry.
// Called once at process shutdown.
func (r *Registry) Teardown() {
	r.mu.Lock()
	conns := make([]Conn, 0, len(r.byConn))
	for conn := range r.byConn {
		conns = append(conns, conn)
	}
	r.rooms = make(map[int]map[Conn]struct{})
	r.byConn = make(map[Conn]int)
	r.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
