package services_test

import (
	"artmarket/models"
	"artmarket/storage"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/mock"
)

// MockStore is a mock implementation of storage.Store for unit tests.
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

// newMockStore returns a MockStore that accepts every load and save call,
// as most tests only care about the in-memory ledger semantics.
func newMockStore() *MockStore {
	store := new(MockStore)
	store.On("GetAssetsByRegistry", mock.Anything).Return([]models.Asset{}, nil)
	store.On("GetListings").Return([]models.Listing{}, nil)
	store.On("GetBalances").Return(map[string]uint64{}, nil)
	store.On("SaveAsset", mock.Anything).Return(nil)
	store.On("SaveListingCreated", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("SaveListingCancelled", mock.Anything, mock.Anything).Return(nil)
	store.On("SaveListingSold", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return store
}

func newAddress() string {
	return solana.NewWallet().PublicKey().String()
}
