package runtime

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Event is the minimal envelope spec.md §6.1 expects the runtime to emit
// per successful extrinsic: a topic hash derived from the encoded action,
// plus a module-assigned payload the caller can type-assert on.
type Event struct {
	ID      string
	Label   string
	Topic   [32]byte
	Payload any
}

// EventBus is an in-process fan-out used in place of the outer chain's
// event log. Handlers subscribe for the lifetime of the process; there is
// no persistence here, that is db.AuditLog's job.
type EventBus struct {
	mu   sync.RWMutex
	subs []func(Event)
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers fn to be called for every future Emit.
func (b *EventBus) Subscribe(fn func(Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, fn)
}

// Emit assigns a fresh event ID, computes the topic hash over encoded, and
// notifies every subscriber synchronously in registration order.
func (b *EventBus) Emit(encoded []byte, payload any) Event {
	ev := Event{
		ID:      uuid.NewString(),
		Label:   string(encoded),
		Topic:   TopicHash(encoded),
		Payload: payload,
	}
	b.mu.RLock()
	subs := make([]func(Event), len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()
	for _, fn := range subs {
		fn(ev)
	}
	return ev
}

// BlockClock stands in for the outer chain's block height: a monotonic
// counter seeded at genesis and advanced once per call. did.Registry's
// NewOnchain uses it to stamp a freshly registered DID's baseline nonce.
type BlockClock struct {
	n uint64
}

// NewBlockClock seeds a BlockClock at genesis.
func NewBlockClock(genesis uint64) *BlockClock {
	return &BlockClock{n: genesis}
}

// Next advances the clock and returns the new value.
func (c *BlockClock) Next() uint64 {
	return atomic.AddUint64(&c.n, 1)
}
