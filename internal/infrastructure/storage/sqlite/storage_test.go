package sqlite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"vaultledger/internal/crypto"
	"vaultledger/internal/domain/ledger"
)

const testIterations = 1_000

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := New(filepath.Join(t.TempDir(), "ledger.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestService(t *testing.T) (*ledger.Service, *Storage) {
	t.Helper()
	store := newTestStorage(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cipher := crypto.NewCipher(testIterations)
	return ledger.NewService(store.Repositories(), store, cipher, testIterations, log), store
}

func TestMigrationsCreateSchema(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	// Every table is queryable right after New.
	repos := store.Repositories()
	_, err := repos.Profiles.List(ctx)
	assert.NoError(t, err)
	_, err = repos.Categories.ListByType(ctx, ledger.Income)
	assert.NoError(t, err)
}

func TestProfileRepository(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	repos := store.Repositories()

	id, err := repos.Profiles.Create(ctx, "Alice", "verifier-blob")
	require.NoError(t, err)

	// Duplicate names are allowed, disambiguated by id.
	id2, err := repos.Profiles.Create(ctx, "Alice", "other-blob")
	require.NoError(t, err)
	assert.NotEqual(t, id, id2)

	p, err := repos.Profiles.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "verifier-blob", p.Verifier)

	_, err = repos.Profiles.Get(ctx, 999)
	assert.ErrorIs(t, err, ledger.ErrProfileNotFound)
}

func TestEndToEndScenario(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	profileID, err := service.CreateProfile(ctx, "Alice", "pw123")
	require.NoError(t, err)

	require.NoError(t, service.Authenticate(ctx, profileID, "pw123"))
	assert.ErrorIs(t, service.Authenticate(ctx, profileID, "pw124"), ledger.ErrWrongPassword)

	accountID, err := service.CreateAccount(ctx, profileID, "Cash", "pw123")
	require.NoError(t, err)
	categoryID, err := service.CreateCategory(ctx, "Salary", ledger.Income, "pw123")
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, accountID, categoryID, ledger.Income,
		decimal.NewFromInt(5000), "May salary", "pw123")
	require.NoError(t, err)

	balance, err := service.Balance(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(5000)))

	// Correct password decrypts everything.
	accounts, err := service.ListAccounts(ctx, profileID, "pw123")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Cash", accounts[0].Name.Value)

	// Wrong password: text fields fail, numeric balance is untouched.
	accounts, err = service.ListAccounts(ctx, profileID, "pw124")
	require.NoError(t, err)
	assert.ErrorIs(t, accounts[0].Name.Err, crypto.ErrDecryptionFailed)

	categories, err := service.ListCategories(ctx, ledger.Income, "pw124")
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.ErrorIs(t, categories[0].Name.Err, crypto.ErrDecryptionFailed)

	balance, err = service.Balance(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(5000)))
}

func TestPaginationCoversAllRowsOnce(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	profileID, err := service.CreateProfile(ctx, "Alice", "pw123")
	require.NoError(t, err)
	accountID, err := service.CreateAccount(ctx, profileID, "Cash", "pw123")
	require.NoError(t, err)
	categoryID, err := service.CreateCategory(ctx, "Groceries", ledger.Expense, "pw123")
	require.NoError(t, err)

	for i := 0; i < 45; i++ {
		_, err := service.CreateTransaction(ctx, accountID, categoryID, ledger.Expense,
			decimal.NewFromInt(int64(i+1)), "", "pw123")
		require.NoError(t, err)
	}

	seen := make(map[string]bool)
	var sizes []int
	var previous time.Time
	first := true

	for pageNum := 1; pageNum <= 3; pageNum++ {
		page, err := service.ListTransactions(ctx, profileID, "pw123", ledger.Expense, pageNum, 20)
		require.NoError(t, err)
		assert.Equal(t, 45, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
		sizes = append(sizes, len(page.Rows))

		for _, row := range page.Rows {
			// Amounts are unique here, so they identify rows.
			key := row.Amount.String()
			assert.False(t, seen[key], "row %s returned twice", key)
			seen[key] = true

			if !first {
				assert.False(t, row.CreatedAt.After(previous), "rows must be ordered newest first")
			}
			previous = row.CreatedAt
			first = false
		}
	}

	assert.Equal(t, []int{20, 20, 5}, sizes)
	assert.Len(t, seen, 45)
}

func TestPaginationTieBreakIsDeterministic(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	repos := store.Repositories()

	profileID, err := service.CreateProfile(ctx, "Alice", "pw123")
	require.NoError(t, err)
	accountID, err := service.CreateAccount(ctx, profileID, "Cash", "pw123")
	require.NoError(t, err)
	categoryID, err := service.CreateCategory(ctx, "Misc", ledger.Expense, "pw123")
	require.NoError(t, err)

	// Insert rows sharing one timestamp straight through the repository.
	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		_, err := repos.Transactions.Create(ctx, &ledger.Transaction{
			AccountID:  accountID,
			CategoryID: categoryID,
			Type:       ledger.Expense,
			Amount:     decimal.NewFromInt(int64(i)),
			CreatedAt:  at,
		})
		require.NoError(t, err)
	}

	page, err := service.ListTransactions(ctx, profileID, "pw123", ledger.Expense, 1, 20)
	require.NoError(t, err)
	require.Len(t, page.Rows, 5)

	// Equal timestamps fall back to id descending: latest insert first.
	for i, row := range page.Rows {
		assert.True(t, row.Amount.Equal(decimal.NewFromInt(int64(5-i))),
			"position %d got %s", i, row.Amount)
	}
}

func TestTransferMovesFundsAtomically(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()

	profileID, err := service.CreateProfile(ctx, "Alice", "pw123")
	require.NoError(t, err)
	cashID, err := service.CreateAccount(ctx, profileID, "Cash", "pw123")
	require.NoError(t, err)
	savingsID, err := service.CreateAccount(ctx, profileID, "Savings", "pw123")
	require.NoError(t, err)
	salaryID, err := service.CreateCategory(ctx, "Salary", ledger.Income, "pw123")
	require.NoError(t, err)

	_, err = service.CreateTransaction(ctx, cashID, salaryID, ledger.Income,
		decimal.NewFromInt(5000), "", "pw123")
	require.NoError(t, err)

	require.NoError(t, service.Transfer(ctx, cashID, savingsID, decimal.NewFromInt(1500), "pw123"))

	cash, err := service.Balance(ctx, cashID)
	require.NoError(t, err)
	savings, err := service.Balance(ctx, savingsID)
	require.NoError(t, err)
	assert.True(t, cash.Equal(decimal.NewFromInt(3500)), "got %s", cash)
	assert.True(t, savings.Equal(decimal.NewFromInt(1500)), "got %s", savings)

	// Exactly two new rows, one per side.
	repos := store.Repositories()
	cashTxs, err := repos.Transactions.ListByAccount(ctx, cashID)
	require.NoError(t, err)
	savingsTxs, err := repos.Transactions.ListByAccount(ctx, savingsID)
	require.NoError(t, err)
	assert.Len(t, cashTxs, 2)
	assert.Len(t, savingsTxs, 1)

	// A second transfer reuses the lazily created categories.
	require.NoError(t, service.Transfer(ctx, cashID, savingsID, decimal.NewFromInt(500), "pw123"))
	out, err := repos.Categories.ListByType(ctx, ledger.Expense)
	require.NoError(t, err)
	in, err := repos.Categories.ListByType(ctx, ledger.Income)
	require.NoError(t, err)
	assert.Len(t, out, 1) // Transfer Out
	assert.Len(t, in, 2)  // Salary + Transfer In

	// Insufficient funds leaves both balances untouched.
	err = service.Transfer(ctx, savingsID, cashID, decimal.NewFromInt(100000), "pw123")
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	savings, err = service.Balance(ctx, savingsID)
	require.NoError(t, err)
	assert.True(t, savings.Equal(decimal.NewFromInt(2000)), "got %s", savings)
}

func TestInTxRollsBackOnError(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	profileID, err := store.Repositories().Profiles.Create(ctx, "Alice", "v")
	require.NoError(t, err)

	failure := errors.New("forced failure")
	err = store.InTx(ctx, func(r ledger.Repositories) error {
		if _, err := r.Accounts.Create(ctx, profileID, "blob"); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)

	accounts, err := store.Repositories().Accounts.ListByProfile(ctx, profileID)
	require.NoError(t, err)
	assert.Empty(t, accounts, "rolled-back writes must not be visible")
}

func TestExportRowsAscending(t *testing.T) {
	service, store := newTestService(t)
	ctx := context.Background()
	repos := store.Repositories()

	profileID, err := service.CreateProfile(ctx, "Alice", "pw123")
	require.NoError(t, err)
	accountID, err := service.CreateAccount(ctx, profileID, "Cash", "pw123")
	require.NoError(t, err)
	categoryID, err := service.CreateCategory(ctx, "Misc", ledger.Expense, "pw123")
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 2; i >= 0; i-- { // inserted newest first on purpose
		_, err := repos.Transactions.Create(ctx, &ledger.Transaction{
			AccountID:  accountID,
			CategoryID: categoryID,
			Type:       ledger.Expense,
			Amount:     decimal.NewFromInt(int64(i + 1)),
			CreatedAt:  base.AddDate(0, 0, i),
		})
		require.NoError(t, err)
	}

	rows, err := service.ExportRows(ctx, profileID, "pw123")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.True(t, !rows[i].CreatedAt.Before(rows[i-1].CreatedAt), "export must be ascending")
	}
	assert.Equal(t, "Cash", rows[0].Account.Value)
	assert.Equal(t, "Misc", rows[0].Category.Value)
}
