package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"artmarket/models"
	"artmarket/services"
	"artmarket/storage"

	"github.com/go-chi/chi/v5"
)

// AccountHandler serves account creation and balance queries.
type AccountHandler struct {
	Store    storage.Store
	Registry *services.RegistryService
	Market   *services.MarketService
}

func NewAccountHandler(store storage.Store, registry *services.RegistryService, market *services.MarketService) *AccountHandler {
	return &AccountHandler{Store: store, Registry: registry, Market: market}
}

// CreateAccount generates a keypair and registers the address. The secret
// key is returned exactly once and never stored.
// POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Label string `json:"label"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	address, secret := services.NewAddress()
	account := models.Account{
		Address:   address,
		Label:     requestBody.Label,
		CreatedAt: time.Now(),
	}

	if err := h.Store.SaveAccount(account); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		models.Account
		SecretKey string `json:"secret_key"`
	}{Account: account, SecretKey: secret})
}

// GetAccount fetches a registered account.
// GET /accounts/{address}
func (h *AccountHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	account, found, err := h.Store.GetAccount(address)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "account not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

// GetAccountAssets reports how many registry assets an address holds.
// GET /accounts/{address}/assets
func (h *AccountHandler) GetAccountAssets(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Address string `json:"address"`
		Assets  int    `json:"assets"`
	}{Address: address, Assets: h.Registry.BalanceOf(address)})
}

// GetAccountFunds reports the proceeds balance held for an address.
// GET /accounts/{address}/funds
func (h *AccountHandler) GetAccountFunds(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Address string `json:"address"`
		Funds   uint64 `json:"funds"`
	}{Address: address, Funds: h.Market.FundsOf(address)})
}
