package handlers_test

import (
	"sync"
	"testing"
	"time"

	"artmarket/events"
	"artmarket/models"
	"artmarket/services"
	"artmarket/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStore is a mock implementation of storage.Store for handler tests.
type MockStore struct {
	mock.Mock
}

var _ storage.Store = (*MockStore)(nil)

func (m *MockStore) SaveAccount(account models.Account) error {
	args := m.Called(account)
	return args.Error(0)
}

func (m *MockStore) GetAccount(address string) (models.Account, bool, error) {
	args := m.Called(address)
	return args.Get(0).(models.Account), args.Bool(1), args.Error(2)
}

func (m *MockStore) SaveAsset(asset models.Asset) error {
	args := m.Called(asset)
	return args.Error(0)
}

func (m *MockStore) GetAsset(registry string, id uint64) (models.Asset, bool, error) {
	args := m.Called(registry, id)
	return args.Get(0).(models.Asset), args.Bool(1), args.Error(2)
}

func (m *MockStore) GetAssetsByRegistry(registry string) ([]models.Asset, error) {
	args := m.Called(registry)
	return args.Get(0).([]models.Asset), args.Error(1)
}

func (m *MockStore) GetListing(id uint64) (models.Listing, bool, error) {
	args := m.Called(id)
	return args.Get(0).(models.Listing), args.Bool(1), args.Error(2)
}

func (m *MockStore) GetListings() ([]models.Listing, error) {
	args := m.Called()
	return args.Get(0).([]models.Listing), args.Error(1)
}

func (m *MockStore) GetBalances() (map[string]uint64, error) {
	args := m.Called()
	return args.Get(0).(map[string]uint64), args.Error(1)
}

func (m *MockStore) SaveListingCreated(asset models.Asset, listing models.Listing, feeTo string, feeBalance uint64) error {
	args := m.Called(asset, listing, feeTo, feeBalance)
	return args.Error(0)
}

func (m *MockStore) SaveListingCancelled(asset models.Asset, listing models.Listing) error {
	args := m.Called(asset, listing)
	return args.Error(0)
}

func (m *MockStore) SaveListingSold(asset models.Asset, listing models.Listing, seller string, sellerBalance uint64) error {
	args := m.Called(asset, listing, seller, sellerBalance)
	return args.Error(0)
}

func newMockStore() *MockStore {
	store := new(MockStore)
	store.On("GetAssetsByRegistry", mock.Anything).Return([]models.Asset{}, nil)
	store.On("GetListings").Return([]models.Listing{}, nil)
	store.On("GetBalances").Return(map[string]uint64{}, nil)
	store.On("SaveAsset", mock.Anything).Return(nil).Maybe()
	store.On("SaveListingCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	store.On("SaveListingCancelled", mock.Anything, mock.Anything).Return(nil).Maybe()
	store.On("SaveListingSold", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return store
}

func newAddress() string {
	return solana.NewWallet().PublicKey().String()
}

const testListingFee = uint64(25000)

// testEnv wires real services around a MockStore, the way main does
// against Postgres.
type testEnv struct {
	store    *MockStore
	registry *services.RegistryService
	market   *services.MarketService
	clock    time.Time

	registryAddr string
	owner        string
	operator     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:        newMockStore(),
		clock:        time.Unix(1700000000, 0),
		registryAddr: newAddress(),
		owner:        newAddress(),
		operator:     newAddress(),
	}

	var ledger sync.Mutex
	bus := events.NewBus()
	custody := newAddress()

	market, err := services.NewMarketService(&ledger, env.store, bus,
		custody, env.operator, testListingFee, func() time.Time { return env.clock })
	require.NoError(t, err)

	registry, err := services.NewRegistryService(&ledger, env.store, bus,
		env.registryAddr, "Art token item", "ATI", env.owner, market.Address())
	require.NoError(t, err)
	market.RegisterRegistry(registry)

	env.registry = registry
	env.market = market
	return env
}
