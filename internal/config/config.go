package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vaultledger/internal/crypto"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	defaultEnv      = EnvLocal
	defaultLogLevel = "info"
	defaultDataDir  = ".vaultledger"
	defaultDBFile   = "ledger.db"
	defaultPageSize = 20
)

type Config struct {
	Env           string `mapstructure:"app_env"`
	LogLevel      string `mapstructure:"log_level"`
	DataDir       string `mapstructure:"data_dir"`
	DatabasePath  string `mapstructure:"database_path"`
	KDFIterations int    `mapstructure:"kdf_iterations"`
	// SessionKeyCache opts in to caching derived keys for one session,
	// trading memory exposure of key material for fewer KDF runs.
	SessionKeyCache bool `mapstructure:"kdf_session_cache"`
	PageSize        int  `mapstructure:"page_size"`
}

// MustLoad reads .env (when present) and the environment, applies defaults
// and panics on an invalid configuration.
func MustLoad() *Config {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
		}
	}

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", defaultEnv)
	viper.SetDefault("LOG_LEVEL", defaultLogLevel)
	viper.SetDefault("KDF_ITERATIONS", crypto.DefaultIterations)
	viper.SetDefault("KDF_SESSION_CACHE", false)
	viper.SetDefault("PAGE_SIZE", defaultPageSize)

	dataDir := viper.GetString("DATA_DIR")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = "."
		}
		dataDir = filepath.Join(homeDir, defaultDataDir)
	}

	databasePath := viper.GetString("DATABASE_PATH")
	if databasePath == "" {
		databasePath = filepath.Join(dataDir, defaultDBFile)
	}

	cfg := &Config{
		Env:             viper.GetString("APP_ENV"),
		LogLevel:        viper.GetString("LOG_LEVEL"),
		DataDir:         dataDir,
		DatabasePath:    databasePath,
		KDFIterations:   viper.GetInt("KDF_ITERATIONS"),
		SessionKeyCache: viper.GetBool("KDF_SESSION_CACHE"),
		PageSize:        viper.GetInt("PAGE_SIZE"),
	}

	if err := cfg.validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg
}

func (c *Config) validate() error {
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must not be empty")
	}
	if c.KDFIterations < 1 {
		return fmt.Errorf("kdf_iterations must be positive, got %d", c.KDFIterations)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	return nil
}

func (c *Config) IsProd() bool {
	return c.Env == EnvProd
}
