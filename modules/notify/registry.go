package notify

import (
	"sort"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// DefaultSendBuffer is the number of frames queued per connection before
// new frames are dropped.
const DefaultSendBuffer = 16

// ConnectionID identifies a live connection for the lifetime of the process.
type ConnectionID string

// Sink is the transport side of a connection.
type Sink interface {
	Send(frame []byte) error
}

type connection struct {
	id    ConnectionID
	sink  Sink
	rooms map[string]struct{}
	queue chan []byte
	done  chan struct{}
}

// Registry tracks live connections and the rooms they joined.
//
// Every connection gets its own bounded queue drained by a dedicated writer
// goroutine, so enqueueing never waits on the network. Enqueue happens under
// the read lock and Disconnect under the write lock: once Disconnect returns
// nothing more is queued for that connection.
type Registry struct {
	mu          sync.RWMutex
	connections map[ConnectionID]*connection
	rooms       map[string]map[ConnectionID]struct{}
	sendBuffer  int
	logger      types.Logger
	wg          sync.WaitGroup
}

// NewRegistry creates an empty registry. A non-positive sendBuffer selects
// DefaultSendBuffer.
func NewRegistry(logger types.Logger, sendBuffer int) *Registry {
	if sendBuffer <= 0 {
		sendBuffer = DefaultSendBuffer
	}
	return &Registry{
		connections: make(map[ConnectionID]*connection),
		rooms:       make(map[string]map[ConnectionID]struct{}),
		sendBuffer:  sendBuffer,
		logger:      logger,
	}
}

// Connect registers a new connection writing to sink and returns its id.
func (r *Registry) Connect(sink Sink) ConnectionID {
	c := &connection{
		id:    ConnectionID(uuid.New().String()),
		sink:  sink,
		rooms: make(map[string]struct{}),
		queue: make(chan []byte, r.sendBuffer),
		done:  make(chan struct{}),
	}

	r.mu.Lock()
	r.connections[c.id] = c
	r.mu.Unlock()

	r.wg.Add(1)
	go r.writeLoop(c)

	r.logger.Debug("connection registered", "connection", c.id)
	return c.id
}

// Join adds the connection to room. Joining twice is a no-op, as is joining
// with an unknown connection id.
func (r *Registry) Join(id ConnectionID, room string) {
	if room == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[id]
	if !ok {
		return
	}
	if _, joined := c.rooms[room]; joined {
		return
	}

	members, ok := r.rooms[room]
	if !ok {
		members = make(map[ConnectionID]struct{})
		r.rooms[room] = members
	}
	members[id] = struct{}{}
	c.rooms[room] = struct{}{}

	r.logger.Debug("connection joined room", "connection", id, "room", room)
}

// Leave removes the connection from room. Rooms left empty are deleted.
func (r *Registry) Leave(id ConnectionID, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.connections[id]
	if !ok {
		return
	}
	if _, joined := c.rooms[room]; !joined {
		return
	}
	delete(c.rooms, room)
	r.removeMember(room, id)
}

// Disconnect removes the connection from every room, stops its writer and
// drops anything still queued. Unknown ids are ignored.
func (r *Registry) Disconnect(id ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.disconnectLocked(id)
}

func (r *Registry) disconnectLocked(id ConnectionID) {
	c, ok := r.connections[id]
	if !ok {
		return
	}

	for room := range c.rooms {
		r.removeMember(room, id)
	}
	delete(r.connections, id)
	close(c.done)

	r.logger.Debug("connection removed", "connection", id)
}

// removeMember must be called with the write lock held.
func (r *Registry) removeMember(room string, id ConnectionID) {
	members, ok := r.rooms[room]
	if !ok {
		return
	}
	delete(members, id)
	if len(members) == 0 {
		delete(r.rooms, room)
	}
}

// MembersOf returns the connections currently in room, sorted by id. An empty
// result is normal for users that are offline.
func (r *Registry) MembersOf(room string) []ConnectionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[room]
	ids := make([]ConnectionID, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Send queues a frame for a single connection. It reports false when the
// connection is unknown or its queue is full.
func (r *Registry) Send(id ConnectionID, frame []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.connections[id]
	if !ok {
		return false
	}
	return r.enqueue(c, frame)
}

// broadcast queues frame for every member of room and returns how many
// queues accepted it and how many were full.
func (r *Registry) broadcast(room string, frame []byte) (delivered, dropped int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id := range r.rooms[room] {
		c, ok := r.connections[id]
		if !ok {
			continue
		}
		if r.enqueue(c, frame) {
			delivered++
		} else {
			dropped++
		}
	}
	return delivered, dropped
}

// enqueue must be called with at least the read lock held.
func (r *Registry) enqueue(c *connection, frame []byte) bool {
	select {
	case c.queue <- frame:
		return true
	default:
		r.logger.Warn("send queue full, dropping frame", "connection", c.id)
		return false
	}
}

func (r *Registry) writeLoop(c *connection) {
	defer r.wg.Done()

	for {
		select {
		case <-c.done:
			return
		case frame := <-c.queue:
			// A frame and done can be ready together; disconnect wins.
			select {
			case <-c.done:
				return
			default:
			}
			if err := c.sink.Send(frame); err != nil {
				r.logger.Warn("frame not delivered", "connection", c.id, "error", err)
			}
		}
	}
}

// ConnectionCount returns the number of live connections.
func (r *Registry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.connections)
}

// RoomCount returns the number of non-empty rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Close disconnects every connection and waits for their writers to exit.
func (r *Registry) Close() {
	r.mu.Lock()
	for id := range r.connections {
		r.disconnectLocked(id)
	}
	r.mu.Unlock()

	r.wg.Wait()
}
