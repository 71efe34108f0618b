package services

import (
	"fmt"
	"sync"
	"time"

	"artmarket/events"
	"artmarket/models"
	"artmarket/storage"

	"go.uber.org/zap"
)

// RegistryService owns the asset table of one registry: id assignment,
// metadata, and holder transfers. The marketplace is pre-authorized as the
// standing operator at construction, so listing an asset needs no separate
// approval step. The operator is never revoked.
//
// All public operations take the shared ledger mutex; every call observes
// a consistent snapshot and commits atomically.
type RegistryService struct {
	mu    *sync.Mutex
	store storage.Store
	bus   *events.Bus
	log   *zap.Logger

	address  string
	name     string
	symbol   string
	owner    string // the only address allowed to mint
	operator string // marketplace custody address, may transfer any asset

	assets map[uint64]*models.Asset
	nextID uint64
}

// NewRegistryService builds the registry and reloads its asset table from
// the store.
func NewRegistryService(mu *sync.Mutex, store storage.Store, bus *events.Bus,
	address, name, symbol, owner, operator string) (*RegistryService, error) {

	if !validAddress(address) || !validAddress(owner) || !validAddress(operator) {
		return nil, fmt.Errorf("registry %q: %w", name, ErrInvalidRecipient)
	}

	assets, err := store.GetAssetsByRegistry(address)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	r := &RegistryService{
		mu:       mu,
		store:    store,
		bus:      bus,
		log:      zap.L().Named("registry"),
		address:  address,
		name:     name,
		symbol:   symbol,
		owner:    owner,
		operator: operator,
		assets:   make(map[uint64]*models.Asset, len(assets)),
	}
	for i := range assets {
		a := assets[i]
		r.assets[a.ID] = &a
		if a.ID > r.nextID {
			r.nextID = a.ID
		}
	}

	r.log.Info("registry ready",
		zap.String("address", address),
		zap.String("name", name),
		zap.String("symbol", symbol),
		zap.Int("assets", len(assets)))
	return r, nil
}

// Address returns the registry's own address, used as the registry
// reference in marketplace calls.
func (r *RegistryService) Address() string { return r.address }

func (r *RegistryService) Name() string { return r.name }

func (r *RegistryService) Symbol() string { return r.symbol }

// Owner returns the only address allowed to mint.
func (r *RegistryService) Owner() string { return r.owner }

// Mint creates the next asset with the given metadata locator, held by the
// caller. Only the registry owner may mint; a rejected call does not
// consume an id.
func (r *RegistryService) Mint(caller, tokenURI string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.owner {
		return 0, ErrNotRegistryOwner
	}

	asset := models.Asset{
		Registry: r.address,
		ID:       r.nextID + 1,
		TokenURI: tokenURI,
		Holder:   caller,
		MintedAt: time.Now(),
	}
	if err := r.store.SaveAsset(asset); err != nil {
		return 0, fmt.Errorf("persist mint: %w", err)
	}

	r.nextID = asset.ID
	r.assets[asset.ID] = &asset
	r.publishTransfer(asset.ID, "", caller)

	r.log.Info("asset minted",
		zap.Uint64("asset_id", asset.ID),
		zap.String("token_uri", tokenURI),
		zap.String("holder", caller))
	return asset.ID, nil
}

// Asset returns the asset record for an id.
func (r *RegistryService) Asset(assetID uint64) (models.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[assetID]
	if !ok {
		return models.Asset{}, ErrUnknownAsset
	}
	return *a, nil
}

// HolderOf returns the current holder of an asset.
func (r *RegistryService) HolderOf(assetID uint64) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.assets[assetID]
	if !ok {
		return "", ErrUnknownAsset
	}
	return a.Holder, nil
}

// BalanceOf counts the assets currently held by an address.
func (r *RegistryService) BalanceOf(address string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.balanceOfLocked(address)
}

func (r *RegistryService) balanceOfLocked(address string) int {
	count := 0
	for _, a := range r.assets {
		if a.Holder == address {
			count++
		}
	}
	return count
}

// Transfer moves an asset from its current holder to the recipient. The
// caller must be the holder itself or the pre-authorized operator.
func (r *RegistryService) Transfer(caller, from, to string, assetID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated, err := r.transferChecked(caller, from, to, assetID)
	if err != nil {
		return err
	}
	if err := r.store.SaveAsset(updated); err != nil {
		return fmt.Errorf("persist transfer: %w", err)
	}
	r.commitTransfer(updated, from)
	return nil
}

// transferChecked validates a transfer and returns the asset with the
// holder updated, without committing anything. Callers must hold the
// ledger mutex. The marketplace uses it to fold a registry transfer and a
// listing transition into one atomic commit.
func (r *RegistryService) transferChecked(caller, from, to string, assetID uint64) (models.Asset, error) {
	a, ok := r.assets[assetID]
	if !ok {
		return models.Asset{}, ErrUnknownAsset
	}
	if caller != a.Holder && caller != r.operator {
		return models.Asset{}, ErrNotAuthorized
	}
	if from != a.Holder {
		return models.Asset{}, ErrNotAuthorized
	}
	if !validAddress(to) {
		return models.Asset{}, ErrInvalidRecipient
	}

	updated := *a
	updated.Holder = to
	return updated, nil
}

// commitTransfer applies an already-persisted holder change to the
// in-memory table and emits the holder-change notification.
func (r *RegistryService) commitTransfer(updated models.Asset, from string) {
	*r.assets[updated.ID] = updated
	r.publishTransfer(updated.ID, from, updated.Holder)
}

func (r *RegistryService) publishTransfer(assetID uint64, from, to string) {
	r.bus.Publish(events.Event{
		Type:     events.TypeAssetTransferred,
		Registry: r.address,
		AssetID:  assetID,
		From:     from,
		To:       to,
	})
}
