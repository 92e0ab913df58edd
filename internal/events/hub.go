package events

import (
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/fx"
)

var Module = fx.Module("events",
	fx.Provide(NewHub),
)

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

const (
	DefaultBufferSize       = 50
	DefaultSubscriberBuffer = 16
)

// ChangeEvent describes a row change on one of the storefront tables. Admin
// screens subscribe per table and re-fetch when a change arrives.
type ChangeEvent struct {
	Table      string    `json:"table"`
	Action     string    `json:"action"`
	RowID      string    `json:"row_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Hub struct {
	mu               sync.RWMutex
	streams          map[string]*stream
	bufferSize       int
	subscriberBuffer int
}

type stream struct {
	mu     sync.Mutex
	buffer []ChangeEvent
	subs   map[uint64]chan ChangeEvent
	nextID uint64
}

type Subscription struct {
	hub   *Hub
	table string
	id    uint64
	ch    chan ChangeEvent
	once  sync.Once
}

func NewHub() *Hub {
	return &Hub{
		streams:          make(map[string]*stream),
		bufferSize:       DefaultBufferSize,
		subscriberBuffer: DefaultSubscriberBuffer,
	}
}

// Publish fans the event out to current subscribers of the table. Slow
// subscribers are skipped rather than blocking the publisher.
func (h *Hub) Publish(table string, event ChangeEvent) {
	if h == nil {
		return
	}
	name := strings.TrimSpace(table)
	if name == "" {
		return
	}
	h.mu.RLock()
	stream := h.streams[name]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	stream.buffer = append(stream.buffer, event)
	if len(stream.buffer) > h.bufferSize {
		stream.buffer = stream.buffer[len(stream.buffer)-h.bufferSize:]
	}
	subs := make([]chan ChangeEvent, 0, len(stream.subs))
	for _, ch := range stream.subs {
		subs = append(subs, ch)
	}
	stream.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a listener on the table and returns the recent buffer so
// a newly attached consumer can catch up.
func (h *Hub) Subscribe(table string) (*Subscription, []ChangeEvent, error) {
	if h == nil {
		return nil, nil, errors.New("hub_unavailable")
	}
	name := strings.TrimSpace(table)
	if name == "" {
		return nil, nil, errors.New("invalid_table")
	}

	stream := h.ensureStream(name)
	stream.mu.Lock()
	if stream.subs == nil {
		stream.subs = make(map[uint64]chan ChangeEvent)
	}
	id := stream.nextID
	stream.nextID++
	ch := make(chan ChangeEvent, h.subscriberBuffer)
	stream.subs[id] = ch
	buffer := append([]ChangeEvent(nil), stream.buffer...)
	stream.mu.Unlock()

	return &Subscription{
		hub:   h,
		table: name,
		id:    id,
		ch:    ch,
	}, buffer, nil
}

func (h *Hub) ensureStream(table string) *stream {
	h.mu.RLock()
	current := h.streams[table]
	h.mu.RUnlock()
	if current != nil {
		return current
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	current = h.streams[table]
	if current == nil {
		current = &stream{subs: make(map[uint64]chan ChangeEvent)}
		h.streams[table] = current
	}
	return current
}

func (h *Hub) unsubscribe(table string, id uint64) {
	if h == nil {
		return
	}
	h.mu.RLock()
	stream := h.streams[table]
	h.mu.RUnlock()
	if stream == nil {
		return
	}

	stream.mu.Lock()
	delete(stream.subs, id)
	remaining := len(stream.subs)
	stream.mu.Unlock()
	if remaining != 0 {
		return
	}

	h.mu.Lock()
	current := h.streams[table]
	if current == stream {
		stream.mu.Lock()
		if len(stream.subs) == 0 {
			delete(h.streams, table)
		}
		stream.mu.Unlock()
	}
	h.mu.Unlock()
}

func (s *Subscription) Events() <-chan ChangeEvent {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *Subscription) Close() {
	if s == nil || s.hub == nil {
		return
	}
	s.once.Do(func() {
		s.hub.unsubscribe(s.table, s.id)
	})
}
