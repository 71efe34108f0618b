package main

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"artmarket/config"
	"artmarket/events"
	"artmarket/handlers"
	"artmarket/services"
	"artmarket/storage"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func main() {
	config.Init()
	cfg := config.Get()

	db, err := storage.NewDB(cfg.DatabaseURL)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("failed to connect to the database")
	}
	defer db.Close()

	marketAddr, generated := resolveAddress("market", cfg.MarketAddress)
	operatorAddr, g := resolveAddress("market operator", cfg.MarketOperator)
	generated = generated || g
	registryAddr, g := resolveAddress("registry", cfg.RegistryAddress)
	generated = generated || g
	ownerAddr, g := resolveAddress("registry owner", cfg.RegistryOwner)
	generated = generated || g

	// Freshly generated addresses would orphan every asset, listing and
	// balance persisted under the previous run's addresses, so they are
	// only acceptable on an empty database.
	if generated {
		if err := requireEmptyLedger(db); err != nil {
			zap.L().With(zap.Error(err)).Fatal(
				"set MARKET_ADDRESS, MARKET_OPERATOR, REGISTRY_ADDRESS and REGISTRY_OWNER to reuse the existing database")
		}
	}

	bus := events.NewBus()
	defer bus.Close()

	// Shared guard: registry and marketplace commit against one ledger,
	// one operation at a time.
	var ledger sync.Mutex

	// The registry pre-authorizes the marketplace as its transfer operator,
	// so listing an asset needs no separate approval call.
	registry, err := services.NewRegistryService(&ledger, db, bus,
		registryAddr, cfg.RegistryName, cfg.RegistrySymbol, ownerAddr, marketAddr)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("failed to initialise the asset registry")
	}

	market, err := services.NewMarketService(&ledger, db, bus,
		marketAddr, operatorAddr, cfg.ListingFee, time.Now)
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("failed to initialise the marketplace")
	}
	market.RegisterRegistry(registry)

	listener := events.NewListener(bus)
	go listener.Start(context.Background())

	accountHandler := handlers.NewAccountHandler(db, registry, market)
	assetHandler := handlers.NewAssetHandler(registry)
	marketHandler := handlers.NewMarketHandler(market)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.URLFormat)

	r.Route("/accounts", func(r chi.Router) {
		r.Post("/", accountHandler.CreateAccount)
		r.Get("/{address}", accountHandler.GetAccount)
		r.Get("/{address}/assets", accountHandler.GetAccountAssets)
		r.Get("/{address}/funds", accountHandler.GetAccountFunds)
	})

	r.Route("/assets", func(r chi.Router) {
		r.Post("/", assetHandler.MintAsset)
		r.Get("/{id}", assetHandler.GetAsset)
		r.Get("/{id}/holder", assetHandler.GetAssetHolder)
	})

	r.Route("/market", func(r chi.Router) {
		r.Get("/fee", marketHandler.GetListingFee)
		r.Get("/listings", marketHandler.GetListings)
		r.Post("/listings", marketHandler.CreateListing)
		r.Get("/listings/{id}", marketHandler.GetListing)
		r.Post("/listings/{id}/cancel", marketHandler.CancelListing)
		r.Post("/listings/{id}/purchase", marketHandler.Purchase)
		r.Get("/purchases/{address}", marketHandler.GetPurchases)
	})

	zap.L().Info("marketplace backend listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		zap.L().With(zap.Error(err)).Fatal("server stopped")
	}
}

// resolveAddress returns the configured address, or generates a fresh one
// when the configuration leaves it empty. The second return reports
// whether the address was generated.
func resolveAddress(role, configured string) (string, bool) {
	if configured != "" {
		return configured, false
	}

	address, _ := services.NewAddress()
	zap.L().Info("generated address", zap.String("role", role), zap.String("address", address))
	return address, true
}

// requireEmptyLedger fails when the store already holds listings or fund
// balances. Those records are keyed to the addresses of the run that
// wrote them and become unreachable under freshly generated ones.
func requireEmptyLedger(store storage.Store) error {
	listings, err := store.GetListings()
	if err != nil {
		return err
	}
	balances, err := store.GetBalances()
	if err != nil {
		return err
	}
	if len(listings) > 0 || len(balances) > 0 {
		return errors.New("database already holds listings or balances")
	}
	return nil
}
