package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"artmarket/models"
	"artmarket/services"

	"github.com/go-chi/chi/v5"
)

// MarketHandler serves the marketplace: listing lifecycle and queries.
type MarketHandler struct {
	Market *services.MarketService
}

func NewMarketHandler(market *services.MarketService) *MarketHandler {
	return &MarketHandler{Market: market}
}

// GetListingFee reports the fixed fee charged at listing creation.
// GET /market/fee
func (h *MarketHandler) GetListingFee(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		ListingFee uint64 `json:"listing_fee"`
	}{ListingFee: h.Market.ListingFee()})
}

// CreateListing escrows an asset and opens a listing. The deadline is a
// unix timestamp in seconds; the payment must equal the listing fee.
// POST /market/listings
func (h *MarketHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Caller   string `json:"caller"`
		Registry string `json:"registry"`
		AssetID  uint64 `json:"asset_id"`
		Price    uint64 `json:"price"`
		Deadline int64  `json:"deadline"`
		Payment  uint64 `json:"payment"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	listingID, err := h.Market.CreateListing(requestBody.Caller, requestBody.Registry,
		requestBody.AssetID, requestBody.Price, time.Unix(requestBody.Deadline, 0), requestBody.Payment)
	if err != nil {
		writeError(w, err)
		return
	}

	listing, err := h.Market.Listing(listingID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(listing)
}

// CancelListing returns an escrowed asset to its seller.
// POST /market/listings/{id}/cancel
func (h *MarketHandler) CancelListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := listingIDParam(r)
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	var requestBody struct {
		Caller string `json:"caller"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Market.CancelListing(requestBody.Caller, listingID); err != nil {
		writeError(w, err)
		return
	}

	listing, err := h.Market.Listing(listingID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// Purchase sells an active listing to the caller. The payment must equal
// the listing price.
// POST /market/listings/{id}/purchase
func (h *MarketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	listingID, err := listingIDParam(r)
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	var requestBody struct {
		Caller   string `json:"caller"`
		Registry string `json:"registry"`
		Payment  uint64 `json:"payment"`
	}
	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Market.Purchase(requestBody.Caller, requestBody.Registry, listingID, requestBody.Payment); err != nil {
		writeError(w, err)
		return
	}

	listing, err := h.Market.Listing(listingID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// GetListing fetches one listing, terminal ones included.
// GET /market/listings/{id}
func (h *MarketHandler) GetListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := listingIDParam(r)
	if err != nil {
		http.Error(w, "invalid listing id", http.StatusBadRequest)
		return
	}

	listing, err := h.Market.Listing(listingID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listing)
}

// GetListings fetches every listing in creation order.
// GET /market/listings
func (h *MarketHandler) GetListings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.Market.Listings())
}

// GetPurchases fetches the sold listings held by an address, in creation
// order.
// GET /market/purchases/{address}
func (h *MarketHandler) GetPurchases(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	purchases := make([]models.Listing, 0)
	for listing := range h.Market.PurchasedBy(address) {
		purchases = append(purchases, listing)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(purchases)
}

func listingIDParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}
