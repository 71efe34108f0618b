package handlers

import (
	"errors"
	"net/http"

	"artmarket/services"
)

// writeError maps the service error taxonomy onto HTTP statuses. The error
// text itself names the violated precondition, so it is passed through.
func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrUnknownAsset),
		errors.Is(err, services.ErrUnknownListing),
		errors.Is(err, services.ErrUnknownRegistry):
		return http.StatusNotFound
	case errors.Is(err, services.ErrNotRegistryOwner),
		errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrNotSeller):
		return http.StatusForbidden
	case errors.Is(err, services.ErrInvalidPrice),
		errors.Is(err, services.ErrInvalidDeadline),
		errors.Is(err, services.ErrInvalidRecipient),
		errors.Is(err, services.ErrIncorrectFeePayment),
		errors.Is(err, services.ErrIncorrectPayment),
		errors.Is(err, services.ErrRegistryMismatch):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrListingNotActive):
		return http.StatusConflict
	case errors.Is(err, services.ErrListingExpired):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
