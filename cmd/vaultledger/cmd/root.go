package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/term"

	"vaultledger/internal/config"
	"vaultledger/internal/crypto"
	"vaultledger/internal/domain/ledger"
	"vaultledger/internal/infrastructure/storage/sqlite"
	"vaultledger/internal/logger"
)

var (
	dbPath    string
	profileID int64

	cfg     *config.Config
	log     *slog.Logger
	store   *sqlite.Storage
	service *ledger.Service
)

var rootCmd = &cobra.Command{
	Use:   "vaultledger",
	Short: "vaultledger - an encrypted personal-finance ledger",
	Long: `vaultledger keeps a personal-finance ledger in a local SQLite file.

Account names, category names and transaction descriptions are encrypted
under a key derived from the profile's master password; amounts and dates
stay queryable plaintext. The password is asked for per command and never
stored.`,
	PersistentPreRunE:  setupApp,
	PersistentPostRunE: teardownApp,
	SilenceUsage:       true,
	SilenceErrors:      true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setupApp(_ *cobra.Command, _ []string) error {
	cfg = config.MustLoad()
	if dbPath != "" {
		cfg.DatabasePath = dbPath
	}
	log = logger.New(cfg.Env)

	var err error
	store, err = sqlite.New(cfg.DatabasePath, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	var cipher crypto.FieldCipher = crypto.NewCipher(cfg.KDFIterations)
	if cfg.SessionKeyCache {
		cipher = crypto.NewCachedCipher(crypto.NewCipher(cfg.KDFIterations))
	}
	service = ledger.NewService(store.Repositories(), store, cipher, cfg.KDFIterations, log)
	return nil
}

func teardownApp(_ *cobra.Command, _ []string) error {
	if store != nil {
		return store.Close()
	}
	return nil
}

// readPassword prompts without echoing.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}

// authenticatedPassword prompts for the master password and verifies it
// against the selected profile before any operation runs.
func authenticatedPassword(cmd *cobra.Command) (string, error) {
	if profileID == 0 {
		return "", fmt.Errorf("select a profile with --profile")
	}
	password, err := readPassword("Master password: ")
	if err != nil {
		return "", err
	}
	if err := service.Authenticate(cmd.Context(), profileID, password); err != nil {
		return "", err
	}
	return password, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to the ledger database file")
	rootCmd.PersistentFlags().Int64Var(&profileID, "profile", 0, "profile id to operate on")
}
