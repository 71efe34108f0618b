package services

import "errors"

// Registry errors.
var (
	ErrNotRegistryOwner = errors.New("caller is not the registry owner")
	ErrUnknownAsset     = errors.New("unknown asset")
	ErrNotAuthorized    = errors.New("caller is not the holder or the authorized operator")
	ErrInvalidRecipient = errors.New("invalid recipient address")
)

// Marketplace errors.
var (
	ErrInvalidPrice        = errors.New("price must be greater than zero")
	ErrInvalidDeadline     = errors.New("deadline must be in the future")
	ErrIncorrectFeePayment = errors.New("attached payment does not match the listing fee")
	ErrNotSeller           = errors.New("caller is not the listing seller")
	ErrListingNotActive    = errors.New("listing is not active")
	ErrListingExpired      = errors.New("listing deadline has passed")
	ErrIncorrectPayment    = errors.New("attached payment does not match the listing price")
	ErrUnknownListing      = errors.New("unknown listing")
	ErrUnknownRegistry     = errors.New("unknown asset registry")
	ErrRegistryMismatch    = errors.New("registry does not match the listing")
)
