package services

import "github.com/gagliardetto/solana-go"

// validAddress reports whether addr is a parseable, non-zero base58 address.
func validAddress(addr string) bool {
	if addr == "" {
		return false
	}
	pk, err := solana.PublicKeyFromBase58(addr)
	if err != nil {
		return false
	}
	return !pk.IsZero()
}

// NewAddress generates a fresh keypair and returns its base58 address and
// private key. Used for accounts and for component addresses not pinned by
// configuration.
func NewAddress() (address string, secret string) {
	wallet := solana.NewWallet()
	return wallet.PublicKey().String(), wallet.PrivateKey.String()
}
