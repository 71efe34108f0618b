package models

import "time"

// Account is a registered participant. The address is the base58 public key
// of a keypair generated at creation time; holding assets or funds does not
// require an account row, it only makes the address discoverable.
type Account struct {
	Address   string    `db:"address" json:"address"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
