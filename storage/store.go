package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"artmarket/models"

	"github.com/jmoiron/sqlx"
)

// Store is the persistence boundary the services depend on. The ledger
// itself lives in memory; the store is the durable copy rebuilt on
// startup. Multi-row commit methods run in a single transaction so a
// failed call leaves no partial state behind.
type Store interface {
	SaveAccount(account models.Account) error
	GetAccount(address string) (models.Account, bool, error)

	SaveAsset(asset models.Asset) error
	GetAsset(registry string, id uint64) (models.Asset, bool, error)
	GetAssetsByRegistry(registry string) ([]models.Asset, error)

	GetListing(id uint64) (models.Listing, bool, error)
	GetListings() ([]models.Listing, error)
	GetBalances() (map[string]uint64, error)

	SaveListingCreated(asset models.Asset, listing models.Listing, feeTo string, feeBalance uint64) error
	SaveListingCancelled(asset models.Asset, listing models.Listing) error
	SaveListingSold(asset models.Asset, listing models.Listing, seller string, sellerBalance uint64) error
}

func (d *DB) SaveAccount(account models.Account) error {
	query := `INSERT INTO accounts (address, label, created_at) VALUES ($1, $2, $3)
	          ON CONFLICT (address) DO UPDATE SET label = EXCLUDED.label`
	if _, err := d.Exec(query, account.Address, account.Label, account.CreatedAt); err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}

func (d *DB) GetAccount(address string) (models.Account, bool, error) {
	var account models.Account
	err := d.Get(&account, `SELECT * FROM accounts WHERE address = $1`, address)
	if err != nil {
		if isNoRows(err) {
			return models.Account{}, false, nil
		}
		return models.Account{}, false, fmt.Errorf("get account: %w", err)
	}
	return account, true, nil
}

func (d *DB) SaveAsset(asset models.Asset) error {
	if _, err := d.Exec(upsertAssetQuery, asset.Registry, asset.ID, asset.TokenURI, asset.Holder, asset.MintedAt); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

func (d *DB) GetAsset(registry string, id uint64) (models.Asset, bool, error) {
	var asset models.Asset
	err := d.Get(&asset, `SELECT * FROM assets WHERE registry = $1 AND id = $2`, registry, id)
	if err != nil {
		if isNoRows(err) {
			return models.Asset{}, false, nil
		}
		return models.Asset{}, false, fmt.Errorf("get asset: %w", err)
	}
	return asset, true, nil
}

func (d *DB) GetAssetsByRegistry(registry string) ([]models.Asset, error) {
	assets := make([]models.Asset, 0)
	if err := d.Select(&assets, `SELECT * FROM assets WHERE registry = $1 ORDER BY id`, registry); err != nil {
		return nil, fmt.Errorf("get assets: %w", err)
	}
	return assets, nil
}

func (d *DB) GetListing(id uint64) (models.Listing, bool, error) {
	var listing models.Listing
	err := d.Get(&listing, `SELECT * FROM listings WHERE id = $1`, id)
	if err != nil {
		if isNoRows(err) {
			return models.Listing{}, false, nil
		}
		return models.Listing{}, false, fmt.Errorf("get listing: %w", err)
	}
	return listing, true, nil
}

func (d *DB) GetListings() ([]models.Listing, error) {
	listings := make([]models.Listing, 0)
	if err := d.Select(&listings, `SELECT * FROM listings ORDER BY id`); err != nil {
		return nil, fmt.Errorf("get listings: %w", err)
	}
	return listings, nil
}

func (d *DB) GetBalances() (map[string]uint64, error) {
	rows := make([]struct {
		Address string `db:"address"`
		Amount  uint64 `db:"amount"`
	}, 0)
	if err := d.Select(&rows, `SELECT address, amount FROM balances`); err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}

	balances := make(map[string]uint64, len(rows))
	for _, r := range rows {
		balances[r.Address] = r.Amount
	}
	return balances, nil
}

// SaveListingCreated commits a listing creation: the asset moves into
// escrow, the listing row appears, and the operator's fee balance grows.
func (d *DB) SaveListingCreated(asset models.Asset, listing models.Listing, feeTo string, feeBalance uint64) error {
	return d.inTx(func(tx *sqlx.Tx) error {
		if err := saveAssetTx(tx, asset); err != nil {
			return err
		}
		if err := saveListingTx(tx, listing); err != nil {
			return err
		}
		return saveBalanceTx(tx, feeTo, feeBalance)
	})
}

// SaveListingCancelled commits a cancellation: the asset returns to the
// seller and the listing becomes terminal. The fee is not refunded.
func (d *DB) SaveListingCancelled(asset models.Asset, listing models.Listing) error {
	return d.inTx(func(tx *sqlx.Tx) error {
		if err := saveAssetTx(tx, asset); err != nil {
			return err
		}
		return saveListingTx(tx, listing)
	})
}

// SaveListingSold commits a sale: the asset moves to the buyer, the listing
// becomes terminal, and the seller's funds balance grows by the price.
func (d *DB) SaveListingSold(asset models.Asset, listing models.Listing, seller string, sellerBalance uint64) error {
	return d.inTx(func(tx *sqlx.Tx) error {
		if err := saveAssetTx(tx, asset); err != nil {
			return err
		}
		if err := saveListingTx(tx, listing); err != nil {
			return err
		}
		return saveBalanceTx(tx, seller, sellerBalance)
	})
}

const upsertAssetQuery = `INSERT INTO assets (registry, id, token_uri, holder, minted_at) VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (registry, id) DO UPDATE SET holder = EXCLUDED.holder`

const upsertListingQuery = `INSERT INTO listings (id, registry, asset_id, seller, holder, price, deadline, state, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET holder = EXCLUDED.holder, state = EXCLUDED.state`

const upsertBalanceQuery = `INSERT INTO balances (address, amount) VALUES ($1, $2)
	ON CONFLICT (address) DO UPDATE SET amount = EXCLUDED.amount`

func saveAssetTx(tx *sqlx.Tx, asset models.Asset) error {
	if _, err := tx.Exec(upsertAssetQuery, asset.Registry, asset.ID, asset.TokenURI, asset.Holder, asset.MintedAt); err != nil {
		return fmt.Errorf("save asset: %w", err)
	}
	return nil
}

func saveListingTx(tx *sqlx.Tx, listing models.Listing) error {
	if _, err := tx.Exec(upsertListingQuery, listing.ID, listing.Registry, listing.AssetID, listing.Seller,
		listing.Holder, listing.Price, listing.Deadline, listing.State, listing.CreatedAt); err != nil {
		return fmt.Errorf("save listing: %w", err)
	}
	return nil
}

func saveBalanceTx(tx *sqlx.Tx, address string, amount uint64) error {
	if _, err := tx.Exec(upsertBalanceQuery, address, amount); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}
	return nil
}

func (d *DB) inTx(fn func(tx *sqlx.Tx) error) error {
	tx, err := d.Beginx()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
