package server

import (
	"encoding/json"
	"sync"

	"github.com/artsfest/festboard/internal/festival"
)

// Broker is an in-process pub/sub that pushes the full program collection to
// every subscriber on each change. Readers treat the pushed snapshot as the
// authoritative state; a diff protocol is deliberately not offered.
type Broker struct {
	mu   sync.RWMutex
	subs map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving the JSON-encoded program collection
// on every change.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Broker) Unsubscribe(ch chan []byte) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

// Publish fans the collection out to all subscribers.
func (b *Broker) Publish(programs []festival.Program) {
	if programs == nil {
		programs = []festival.Program{}
	}
	data, _ := json.Marshal(programs)
	b.mu.RLock()
	for ch := range b.subs {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
