package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"artmarket/handlers"
	"artmarket/models"
)

func newAssetRouter(env *testEnv) *chi.Mux {
	assetHandler := handlers.NewAssetHandler(env.registry)

	r := chi.NewRouter()
	r.Post("/assets", assetHandler.MintAsset)
	r.Get("/assets/{id}", assetHandler.GetAsset)
	r.Get("/assets/{id}/holder", assetHandler.GetAssetHolder)
	return r
}

func TestMintAssetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	r := newAssetRouter(env)

	rr := postJSON(t, r, "/assets", map[string]any{
		"caller":    env.owner,
		"token_uri": "http://0xcert.org/1",
	})
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp struct {
		Registry string `json:"registry"`
		AssetID  uint64 `json:"asset_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, env.registryAddr, resp.Registry)
	assert.Equal(t, uint64(1), resp.AssetID)
}

func TestMintAssetEndpointNotOwner(t *testing.T) {
	env := newTestEnv(t)
	r := newAssetRouter(env)

	rr := postJSON(t, r, "/assets", map[string]any{
		"caller":    newAddress(),
		"token_uri": "http://0xcert.org/1",
	})
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMintAssetEndpointMissingURI(t *testing.T) {
	env := newTestEnv(t)
	r := newAssetRouter(env)

	rr := postJSON(t, r, "/assets", map[string]any{
		"caller": env.owner,
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetAssetEndpoint(t *testing.T) {
	env := newTestEnv(t)
	r := newAssetRouter(env)

	assetID, err := env.registry.Mint(env.owner, "http://0xcert.org/1")
	require.NoError(t, err)

	rr := getJSON(t, r, "/assets/1")
	assert.Equal(t, http.StatusOK, rr.Code)

	var asset models.Asset
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &asset))
	assert.Equal(t, assetID, asset.ID)
	assert.Equal(t, "http://0xcert.org/1", asset.TokenURI)
	assert.Equal(t, env.owner, asset.Holder)

	rr = getJSON(t, r, "/assets/1/holder")
	assert.Equal(t, http.StatusOK, rr.Code)

	var holder struct {
		AssetID uint64 `json:"asset_id"`
		Holder  string `json:"holder"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &holder))
	assert.Equal(t, env.owner, holder.Holder)
}

func TestGetAssetEndpointUnknown(t *testing.T) {
	env := newTestEnv(t)
	r := newAssetRouter(env)

	rr := getJSON(t, r, "/assets/99")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = getJSON(t, r, "/assets/abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
