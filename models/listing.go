package models

import "time"

type ListingState string

const (
	ListingStateListed    ListingState = "LISTED"
	ListingStateSold      ListingState = "SOLD"
	ListingStateCancelled ListingState = "CANCELLED"
)

// Listing is one escrowed sale offer: exactly one asset, at a fixed price,
// until a fixed deadline. Listed is the only non-terminal state; a listing
// is never deleted, only transitioned.
type Listing struct {
	ID        uint64       `db:"id" json:"id"`
	Registry  string       `db:"registry" json:"registry"` // address of the asset registry
	AssetID   uint64       `db:"asset_id" json:"asset_id"`
	Seller    string       `db:"seller" json:"seller"`
	Holder    string       `db:"holder" json:"holder"` // holder of record: escrow while listed, buyer once sold
	Price     uint64       `db:"price" json:"price"`   // smallest currency unit
	Deadline  time.Time    `db:"deadline" json:"deadline"`
	State     ListingState `db:"state" json:"state"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
}

// Active reports whether the listing can still be purchased or cancelled.
func (l Listing) Active() bool {
	return l.State == ListingStateListed
}
