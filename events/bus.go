package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeAssetTransferred Type = "asset.transferred"
	TypeListingCreated   Type = "listing.created"
	TypeListingSold      Type = "listing.sold"
	TypeListingCancelled Type = "listing.cancelled"
)

// Event is a ledger notification. Asset transfers carry From/To (From is
// empty for a mint); listing events additionally carry ListingID and Price.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	Registry   string    `json:"registry"`
	AssetID    uint64    `json:"asset_id"`
	ListingID  uint64    `json:"listing_id,omitempty"`
	From       string    `json:"from,omitempty"`
	To         string    `json:"to,omitempty"`
	Price      uint64    `json:"price,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Bus fans ledger notifications out to subscribers. Delivery is best
// effort: a subscriber that stops draining its channel loses events rather
// than blocking the ledger.
type Bus struct {
	mu   sync.Mutex
	subs []chan Event
}

func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber with the given channel buffer.
func (b *Bus) Subscribe(buffer int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, buffer)
	b.subs = append(b.subs, ch)
	return ch
}

// Publish stamps the event with an id and timestamp and delivers it to
// every subscriber that has buffer space left.
func (b *Bus) Publish(e Event) {
	e.ID = uuid.New().String()
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Close closes all subscriber channels. Publish must not be called after.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
