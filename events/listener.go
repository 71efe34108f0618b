package events

import (
	"context"

	"go.uber.org/zap"
)

// Listener consumes the event bus on a background goroutine and writes a
// structured log line per notification. It is the in-process equivalent of
// an off-chain indexer tailing contract events.
type Listener struct {
	ch  <-chan Event
	log *zap.Logger
}

func NewListener(bus *Bus) *Listener {
	return &Listener{
		ch:  bus.Subscribe(256),
		log: zap.L().Named("events"),
	}
}

// Start blocks until the context is cancelled or the bus is closed.
// Run it in its own goroutine.
func (l *Listener) Start(ctx context.Context) {
	l.log.Info("event listener started")

	for {
		select {
		case <-ctx.Done():
			l.log.Info("event listener stopped")
			return
		case e, ok := <-l.ch:
			if !ok {
				l.log.Info("event bus closed")
				return
			}
			l.log.Info("ledger event",
				zap.String("id", e.ID),
				zap.String("type", string(e.Type)),
				zap.String("registry", e.Registry),
				zap.Uint64("asset_id", e.AssetID),
				zap.Uint64("listing_id", e.ListingID),
				zap.String("from", e.From),
				zap.String("to", e.To),
				zap.Uint64("price", e.Price),
			)
		}
	}
}
