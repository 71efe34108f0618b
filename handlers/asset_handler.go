package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"artmarket/services"

	"github.com/go-chi/chi/v5"
)

// AssetHandler serves the asset registry: minting and holder queries.
type AssetHandler struct {
	Registry *services.RegistryService
}

func NewAssetHandler(registry *services.RegistryService) *AssetHandler {
	return &AssetHandler{Registry: registry}
}

// MintAsset mints a new asset. The caller must be the registry owner.
// POST /assets
func (h *AssetHandler) MintAsset(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		Caller   string `json:"caller"`
		TokenURI string `json:"token_uri"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if requestBody.TokenURI == "" {
		http.Error(w, "token_uri is required", http.StatusBadRequest)
		return
	}

	assetID, err := h.Registry.Mint(requestBody.Caller, requestBody.TokenURI)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(struct {
		Registry string `json:"registry"`
		AssetID  uint64 `json:"asset_id"`
	}{Registry: h.Registry.Address(), AssetID: assetID})
}

// GetAsset fetches an asset record.
// GET /assets/{id}
func (h *AssetHandler) GetAsset(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	asset, err := h.Registry.Asset(assetID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(asset)
}

// GetAssetHolder fetches the current holder of an asset.
// GET /assets/{id}/holder
func (h *AssetHandler) GetAssetHolder(w http.ResponseWriter, r *http.Request) {
	assetID, err := assetIDParam(r)
	if err != nil {
		http.Error(w, "invalid asset id", http.StatusBadRequest)
		return
	}

	holder, err := h.Registry.HolderOf(assetID)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		AssetID uint64 `json:"asset_id"`
		Holder  string `json:"holder"`
	}{AssetID: assetID, Holder: holder})
}

func assetIDParam(r *http.Request) (uint64, error) {
	return strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
}
