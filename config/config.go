package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Port  string
	Debug bool

	DatabaseURL string

	ListingFee uint64

	RegistryName    string
	RegistrySymbol  string
	RegistryAddress string
	RegistryOwner   string

	MarketAddress  string
	MarketOperator string
}

// Init loads the .env file (if present) and bootstraps the global logger.
// Call once, before Get.
func Init() {
	err := godotenv.Load(".env")

	NewLogger(Get().Debug)

	if err != nil {
		zap.L().Debug("no .env file loaded", zap.Error(err))
	}
}

func Get() *Config {
	return &Config{
		Port:            getString("PORT", "8080"),
		Debug:           getBool("DEBUG", false),
		DatabaseURL:     getString("DATABASE_URL", "host=localhost port=5432 user=artmarket password=artmarket dbname=artmarket sslmode=disable"),
		ListingFee:      getUint64("LISTING_FEE", 25000),
		RegistryName:    getString("REGISTRY_NAME", "Art token item"),
		RegistrySymbol:  getString("REGISTRY_SYMBOL", "ATI"),
		RegistryAddress: getString("REGISTRY_ADDRESS", ""),
		RegistryOwner:   getString("REGISTRY_OWNER", ""),
		MarketAddress:   getString("MARKET_ADDRESS", ""),
		MarketOperator:  getString("MARKET_OPERATOR", ""),
	}
}

func getString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getUint64(key string, defaultValue uint64) uint64 {
	valStr := getString(key, "")
	if val, err := strconv.ParseUint(valStr, 10, 64); err == nil {
		return val
	}

	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	valStr := getString(key, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultValue
}
