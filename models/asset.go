package models

import "time"

// Asset is a non-fungible item managed by a single asset registry.
// The (Registry, ID) pair is the identity; ids are assigned sequentially
// by the registry and never reused.
type Asset struct {
	Registry string    `db:"registry" json:"registry"`
	ID       uint64    `db:"id" json:"id"`
	TokenURI string    `db:"token_uri" json:"token_uri"` // metadata locator, immutable once minted
	Holder   string    `db:"holder" json:"holder"`
	MintedAt time.Time `db:"minted_at" json:"minted_at"`
}
