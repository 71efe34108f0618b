package main

import (
	"testing"

	"artmarket/models"
	"artmarket/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
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

func TestRequireEmptyLedger(t *testing.T) {
	t.Run("empty database passes", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetListings").Return([]models.Listing{}, nil)
		store.On("GetBalances").Return(map[string]uint64{}, nil)

		require.NoError(t, requireEmptyLedger(store))
	})

	t.Run("existing listings fail", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetListings").Return([]models.Listing{{ID: 1, State: models.ListingStateListed}}, nil)
		store.On("GetBalances").Return(map[string]uint64{}, nil)

		assert.Error(t, requireEmptyLedger(store))
	})

	t.Run("existing balances fail", func(t *testing.T) {
		store := new(MockStore)
		store.On("GetListings").Return([]models.Listing{}, nil)
		store.On("GetBalances").Return(map[string]uint64{"addr": 100}, nil)

		assert.Error(t, requireEmptyLedger(store))
	})
}
