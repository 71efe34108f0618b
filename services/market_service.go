package services

import (
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"artmarket/events"
	"artmarket/models"
	"artmarket/storage"

	"go.uber.org/zap"
)

// MarketService owns the listing state machine and the funds ledger. It is
// the escrow holder: every listed asset is transferred into the market's
// custody address and leaves it only through a sale or a cancellation.
//
// Listed -> Sold (purchase) and Listed -> Cancelled (cancel) are the only
// transitions; both targets are terminal. Listings are never deleted.
type MarketService struct {
	mu    *sync.Mutex
	store storage.Store
	bus   *events.Bus
	log   *zap.Logger
	clock func() time.Time

	custody  string // the market's own address, holds escrowed assets
	operator string // receives listing fees
	fee      uint64

	registries map[string]*RegistryService
	listings   map[uint64]*models.Listing
	balances   map[string]uint64
	nextID     uint64
}

// NewMarketService builds the marketplace and reloads listings and fund
// balances from the store. A nil clock defaults to time.Now.
func NewMarketService(mu *sync.Mutex, store storage.Store, bus *events.Bus,
	custody, operator string, fee uint64, clock func() time.Time) (*MarketService, error) {

	if !validAddress(custody) || !validAddress(operator) {
		return nil, fmt.Errorf("marketplace: %w", ErrInvalidRecipient)
	}
	if clock == nil {
		clock = time.Now
	}

	listings, err := store.GetListings()
	if err != nil {
		return nil, fmt.Errorf("load listings: %w", err)
	}
	balances, err := store.GetBalances()
	if err != nil {
		return nil, fmt.Errorf("load balances: %w", err)
	}
	if balances == nil {
		balances = make(map[string]uint64)
	}

	m := &MarketService{
		mu:         mu,
		store:      store,
		bus:        bus,
		log:        zap.L().Named("market"),
		clock:      clock,
		custody:    custody,
		operator:   operator,
		fee:        fee,
		registries: make(map[string]*RegistryService),
		listings:   make(map[uint64]*models.Listing, len(listings)),
		balances:   balances,
	}
	for i := range listings {
		l := listings[i]
		m.listings[l.ID] = &l
		if l.ID > m.nextID {
			m.nextID = l.ID
		}
	}

	m.log.Info("marketplace ready",
		zap.String("custody", custody),
		zap.String("operator", operator),
		zap.Uint64("listing_fee", fee),
		zap.Int("listings", len(listings)))
	return m, nil
}

// RegisterRegistry makes a registry addressable in marketplace calls. The
// registry must have been constructed with this market's custody address
// as its operator, otherwise escrow transfers will be rejected.
func (m *MarketService) RegisterRegistry(r *RegistryService) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registries[r.Address()] = r
}

// Address returns the market's custody address.
func (m *MarketService) Address() string { return m.custody }

// ListingFee returns the fixed fee charged to sellers at listing time.
func (m *MarketService) ListingFee() uint64 { return m.fee }

// CreateListing escrows the caller's asset and opens a listing for it.
// The attached payment must equal the listing fee exactly; it is retained
// by the market operator and is not refunded on cancellation.
func (m *MarketService) CreateListing(caller, registryAddr string, assetID, price uint64,
	deadline time.Time, payment uint64) (uint64, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if price == 0 {
		return 0, ErrInvalidPrice
	}
	if !deadline.After(m.clock()) {
		return 0, ErrInvalidDeadline
	}
	if payment != m.fee {
		return 0, ErrIncorrectFeePayment
	}
	registry, ok := m.registries[registryAddr]
	if !ok {
		return 0, ErrUnknownRegistry
	}

	// The market acts as the registry's operator here; registry failures
	// (unknown asset, caller not the holder) propagate unchanged.
	escrowed, err := registry.transferChecked(m.custody, caller, m.custody, assetID)
	if err != nil {
		return 0, err
	}

	listing := models.Listing{
		ID:        m.nextID + 1,
		Registry:  registryAddr,
		AssetID:   assetID,
		Seller:    caller,
		Holder:    m.custody,
		Price:     price,
		Deadline:  deadline,
		State:     models.ListingStateListed,
		CreatedAt: m.clock(),
	}
	feeBalance := m.balances[m.operator] + payment

	if err := m.store.SaveListingCreated(escrowed, listing, m.operator, feeBalance); err != nil {
		return 0, fmt.Errorf("persist listing: %w", err)
	}

	registry.commitTransfer(escrowed, caller)
	m.nextID = listing.ID
	m.listings[listing.ID] = &listing
	m.balances[m.operator] = feeBalance
	m.publishListing(events.TypeListingCreated, listing)

	m.log.Info("listing created",
		zap.Uint64("listing_id", listing.ID),
		zap.Uint64("asset_id", assetID),
		zap.String("seller", caller),
		zap.Uint64("price", price),
		zap.Time("deadline", deadline))
	return listing.ID, nil
}

// CancelListing returns an escrowed asset to its seller and closes the
// listing. Only the seller may cancel, and only while the listing is
// active; there is no deadline precondition, so an expired listing stays
// cancellable. The listing fee is not refunded.
func (m *MarketService) CancelListing(caller string, listingID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[listingID]
	if !ok {
		return ErrUnknownListing
	}
	if caller != listing.Seller {
		return ErrNotSeller
	}
	if !listing.Active() {
		return ErrListingNotActive
	}

	// Listings reloaded from the store may reference a registry that was
	// never registered on this instance.
	registry, ok := m.registries[listing.Registry]
	if !ok {
		return ErrUnknownRegistry
	}
	returned, err := registry.transferChecked(m.custody, m.custody, listing.Seller, listing.AssetID)
	if err != nil {
		return err
	}

	cancelled := *listing
	cancelled.State = models.ListingStateCancelled
	cancelled.Holder = listing.Seller

	if err := m.store.SaveListingCancelled(returned, cancelled); err != nil {
		return fmt.Errorf("persist cancellation: %w", err)
	}

	registry.commitTransfer(returned, m.custody)
	*listing = cancelled
	m.publishListing(events.TypeListingCancelled, cancelled)

	m.log.Info("listing cancelled",
		zap.Uint64("listing_id", listingID),
		zap.Uint64("asset_id", cancelled.AssetID),
		zap.String("seller", caller))
	return nil
}

// Purchase sells an active listing to the caller. The attached payment
// must equal the price exactly and is credited to the seller; the asset
// leaves escrow for the buyer and the listing becomes terminal.
func (m *MarketService) Purchase(caller, registryAddr string, listingID uint64, payment uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[listingID]
	if !ok {
		return ErrUnknownListing
	}
	if registryAddr != listing.Registry {
		return ErrRegistryMismatch
	}
	if !listing.Active() {
		return ErrListingNotActive
	}
	if m.clock().After(listing.Deadline) {
		return ErrListingExpired
	}
	if payment != listing.Price {
		return ErrIncorrectPayment
	}

	registry, ok := m.registries[listing.Registry]
	if !ok {
		return ErrUnknownRegistry
	}
	delivered, err := registry.transferChecked(m.custody, m.custody, caller, listing.AssetID)
	if err != nil {
		return err
	}

	sold := *listing
	sold.State = models.ListingStateSold
	sold.Holder = caller
	sellerBalance := m.balances[sold.Seller] + payment

	if err := m.store.SaveListingSold(delivered, sold, sold.Seller, sellerBalance); err != nil {
		return fmt.Errorf("persist sale: %w", err)
	}

	registry.commitTransfer(delivered, m.custody)
	*listing = sold
	m.balances[sold.Seller] = sellerBalance
	m.publishListing(events.TypeListingSold, sold)

	m.log.Info("listing sold",
		zap.Uint64("listing_id", listingID),
		zap.Uint64("asset_id", sold.AssetID),
		zap.String("seller", sold.Seller),
		zap.String("buyer", caller),
		zap.Uint64("price", sold.Price))
	return nil
}

// Listing returns a listing by id, including terminal ones.
func (m *MarketService) Listing(listingID uint64) (models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.listings[listingID]
	if !ok {
		return models.Listing{}, ErrUnknownListing
	}
	return *l, nil
}

// Listings returns every listing in creation order.
func (m *MarketService) Listings() []models.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]models.Listing, 0, len(m.listings))
	for _, id := range m.sortedIDsLocked() {
		out = append(out, *m.listings[id])
	}
	return out
}

// PurchasedBy yields the sold listings whose holder of record is the given
// address, in creation order. The sequence is finite and restartable; each
// restart observes the ledger as of that iteration.
func (m *MarketService) PurchasedBy(address string) iter.Seq[models.Listing] {
	return func(yield func(models.Listing) bool) {
		m.mu.Lock()
		ids := m.sortedIDsLocked()
		purchased := make([]models.Listing, 0)
		for _, id := range ids {
			l := m.listings[id]
			if l.State == models.ListingStateSold && l.Holder == address {
				purchased = append(purchased, *l)
			}
		}
		m.mu.Unlock()

		for _, l := range purchased {
			if !yield(l) {
				return
			}
		}
	}
}

// FundsOf returns the accumulated proceeds (or fees) held for an address.
func (m *MarketService) FundsOf(address string) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[address]
}

func (m *MarketService) sortedIDsLocked() []uint64 {
	ids := make([]uint64, 0, len(m.listings))
	for id := range m.listings {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (m *MarketService) publishListing(t events.Type, l models.Listing) {
	m.bus.Publish(events.Event{
		Type:      t,
		Registry:  l.Registry,
		AssetID:   l.AssetID,
		ListingID: l.ID,
		From:      l.Seller,
		To:        l.Holder,
		Price:     l.Price,
	})
}
