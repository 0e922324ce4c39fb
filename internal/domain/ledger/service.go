package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slog"

	"vaultledger/internal/crypto"
)

// DefaultPageSize matches the interactive history view.
const DefaultPageSize = 20

// AccountView is an account with its decrypted display name.
type AccountView struct {
	ID   int64
	Name Field
}

// CategoryView is a category with its decrypted display name.
type CategoryView struct {
	ID   int64
	Name Field
	Type EntryType
}

// Service implements every ledger operation. All sensitive text passes
// through the field cipher on the way in and out; the master password is
// taken per call and never retained.
type Service struct {
	repos      Repositories
	tx         Transactor
	cipher     crypto.FieldCipher
	iterations int
	log        *slog.Logger
}

func NewService(repos Repositories, tx Transactor, cipher crypto.FieldCipher, iterations int, log *slog.Logger) *Service {
	return &Service{
		repos:      repos,
		tx:         tx,
		cipher:     cipher,
		iterations: iterations,
		log:        log.With("component", "ledger_service"),
	}
}

// CreateProfile stores a new profile with a password verifier. The password
// itself is never persisted; duplicates of the display name are allowed and
// disambiguated by id.
func (s *Service) CreateProfile(ctx context.Context, name, password string) (int64, error) {
	verifier, err := crypto.EncodeVerifier(password, s.iterations)
	if err != nil {
		return 0, fmt.Errorf("encode verifier: %w", err)
	}

	id, err := s.repos.Profiles.Create(ctx, name, verifier)
	if err != nil {
		return 0, fmt.Errorf("create profile: %w", err)
	}

	s.log.Info("profile created", "profile_id", id)
	return id, nil
}

// Authenticate checks the password against the stored verifier by
// re-deriving the key with the stored salt.
func (s *Service) Authenticate(ctx context.Context, profileID int64, password string) error {
	profile, err := s.repos.Profiles.Get(ctx, profileID)
	if err != nil {
		return err
	}

	ok, err := crypto.VerifyPassword(profile.Verifier, password, s.iterations)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.log.Debug("authentication failed", "profile_id", profileID)
		return ErrWrongPassword
	}
	return nil
}

func (s *Service) ListProfiles(ctx context.Context) ([]Profile, error) {
	return s.repos.Profiles.List(ctx)
}

// CreateAccount encrypts the account name and stores it under the profile.
func (s *Service) CreateAccount(ctx context.Context, profileID int64, name, password string) (int64, error) {
	if _, err := s.repos.Profiles.Get(ctx, profileID); err != nil {
		return 0, err
	}

	encrypted, err := s.cipher.EncryptField(name, password)
	if err != nil {
		return 0, fmt.Errorf("encrypt account name: %w", err)
	}

	id, err := s.repos.Accounts.Create(ctx, profileID, encrypted)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	s.log.Info("account created", "profile_id", profileID, "account_id", id)
	return id, nil
}

func (s *Service) ListAccounts(ctx context.Context, profileID int64, password string) ([]AccountView, error) {
	accounts, err := s.repos.Accounts.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	views := make([]AccountView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, AccountView{
			ID:   a.ID,
			Name: decryptField(s.cipher, a.Name, password),
		})
	}
	return views, nil
}

// CreateCategory encrypts the category name; the type tag stays plaintext,
// it drives filtering and balance signs.
func (s *Service) CreateCategory(ctx context.Context, name string, typ EntryType, password string) (int64, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntryType, typ)
	}

	encrypted, err := s.cipher.EncryptField(name, password)
	if err != nil {
		return 0, fmt.Errorf("encrypt category name: %w", err)
	}

	id, err := s.repos.Categories.Create(ctx, encrypted, typ)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}

	s.log.Info("category created", "category_id", id, "type", typ)
	return id, nil
}

func (s *Service) ListCategories(ctx context.Context, typ EntryType, password string) ([]CategoryView, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntryType, typ)
	}

	categories, err := s.repos.Categories.ListByType(ctx, typ)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	views := make([]CategoryView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryView{
			ID:   c.ID,
			Name: decryptField(s.cipher, c.Name, password),
			Type: c.Type,
		})
	}
	return views, nil
}

// CreateTransaction records one income or expense. The transaction type must
// match the category's type; the reference left this to the caller, here the
// service is the only writer and enforces it.
func (s *Service) CreateTransaction(ctx context.Context, accountID, categoryID int64, typ EntryType, amount decimal.Decimal, description, password string) (int64, error) {
	if !typ.Valid() {
		return 0, fmt.Errorf("%w: %q", ErrInvalidEntryType, typ)
	}
	if !amount.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if _, err := s.repos.Accounts.Get(ctx, accountID); err != nil {
		return 0, err
	}
	category, err := s.repos.Categories.Get(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if category.Type != typ {
		return 0, ErrCategoryTypeMismatch
	}

	return s.createTransaction(ctx, s.repos, accountID, categoryID, typ, amount, description, password)
}

func (s *Service) createTransaction(ctx context.Context, r Repositories, accountID, categoryID int64, typ EntryType, amount decimal.Decimal, description, password string) (int64, error) {
	encrypted, err := s.cipher.EncryptField(description, password)
	if err != nil {
		return 0, fmt.Errorf("encrypt description: %w", err)
	}

	id, err := r.Transactions.Create(ctx, &Transaction{
		AccountID:   accountID,
		CategoryID:  categoryID,
		Type:        typ,
		Amount:      amount,
		CreatedAt:   time.Now(),
		Description: encrypted,
	})
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

// Balance recomputes the account balance from the full transaction set on
// every call. No cache: correctness over speed at single-user volume.
func (s *Service) Balance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	if _, err := s.repos.Accounts.Get(ctx, accountID); err != nil {
		return decimal.Zero, err
	}
	txs, err := s.repos.Transactions.ListByAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("list transactions: %w", err)
	}
	return sumBalance(txs), nil
}

func sumBalance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		if t.Type == Income {
			total = total.Add(t.Amount)
		} else {
			total = total.Sub(t.Amount)
		}
	}
	return total
}

// ListTransactions returns one page of decrypted history for a profile and
// type, newest first. A field that fails to decrypt is reported in that
// field's Err; the page itself still comes back.
func (s *Service) ListTransactions(ctx context.Context, profileID int64, password string, typ EntryType, page, pageSize int) (*Page, error) {
	if !typ.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEntryType, typ)
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	total, err := s.repos.Transactions.CountByProfile(ctx, profileID, typ)
	if err != nil {
		return nil, fmt.Errorf("count transactions: %w", err)
	}

	records, err := s.repos.Transactions.ListPage(ctx, profileID, typ, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("list page: %w", err)
	}

	return &Page{
		Rows:       s.decryptRecords(records, password),
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// ExportRows returns every transaction of a profile, ascending by timestamp,
// decrypted for CSV export.
func (s *Service) ExportRows(ctx context.Context, profileID int64, password string) ([]HistoryRow, error) {
	records, err := s.repos.Transactions.ListAllByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return s.decryptRecords(records, password), nil
}

func (s *Service) decryptRecords(records []HistoryRecord, password string) []HistoryRow {
	rows := make([]HistoryRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, HistoryRow{
			CreatedAt:   rec.CreatedAt,
			Account:     decryptField(s.cipher, rec.AccountName, password),
			Category:    decryptField(s.cipher, rec.Category, password),
			Type:        rec.Type,
			Amount:      rec.Amount,
			Description: decryptField(s.cipher, rec.Description, password),
		})
	}
	return rows
}

// Transfer moves amount between two accounts of the same profile as a
// balanced expense/income pair under the well-known transfer categories.
// The funds check, the category lookups and both inserts run inside one
// storage transaction: a one-sided transfer can never become visible.
func (s *Service) Transfer(ctx context.Context, fromAccountID, toAccountID int64, amount decimal.Decimal, password string) error {
	if fromAccountID == toAccountID {
		return ErrSameAccount
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	err := s.tx.InTx(ctx, func(r Repositories) error {
		from, err := r.Accounts.Get(ctx, fromAccountID)
		if err != nil {
			return err
		}
		to, err := r.Accounts.Get(ctx, toAccountID)
		if err != nil {
			return err
		}
		if from.ProfileID != to.ProfileID {
			return ErrCrossProfileTransfer
		}

		txs, err := r.Transactions.ListByAccount(ctx, fromAccountID)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		if sumBalance(txs).LessThan(amount) {
			return ErrInsufficientFunds
		}

		fromName := decryptField(s.cipher, from.Name, password)
		toName := decryptField(s.cipher, to.Name, password)
		if fromName.Err != nil {
			return fromName.Err
		}
		if toName.Err != nil {
			return toName.Err
		}

		outCategory, err := s.getOrCreateCategory(ctx, r, TransferOutCategory, Expense, password)
		if err != nil {
			return err
		}
		inCategory, err := s.getOrCreateCategory(ctx, r, TransferInCategory, Income, password)
		if err != nil {
			return err
		}

		if _, err := s.createTransaction(ctx, r, fromAccountID, outCategory, Expense, amount,
			fmt.Sprintf("Transfer to account %s", toName.Value), password); err != nil {
			return err
		}
		if _, err := s.createTransaction(ctx, r, toAccountID, inCategory, Income, amount,
			fmt.Sprintf("Transfer from account %s", fromName.Value), password); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("transfer completed",
		"from_account_id", fromAccountID, "to_account_id", toAccountID, "amount", amount.String())
	return nil
}

// getOrCreateCategory finds a category by its well-known plaintext name.
// Names are encrypted with per-row salts, so the lookup is a linear
// decrypt-and-compare scan. O(n) per transfer, fine at ledger scale.
func (s *Service) getOrCreateCategory(ctx context.Context, r Repositories, name string, typ EntryType, password string) (int64, error) {
	categories, err := r.Categories.ListByType(ctx, typ)
	if err != nil {
		return 0, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range categories {
		decrypted, err := s.cipher.DecryptField(c.Name, password)
		if err != nil {
			// A category created under another profile's password; skip.
			continue
		}
		if decrypted == name {
			return c.ID, nil
		}
	}

	encrypted, err := s.cipher.EncryptField(name, password)
	if err != nil {
		return 0, fmt.Errorf("encrypt category name: %w", err)
	}
	id, err := r.Categories.Create(ctx, encrypted, typ)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

// Summary recomputes every account balance plus income and expense totals
// for the current calendar month.
func (s *Service) Summary(ctx context.Context, profileID int64, password string) (*Summary, error) {
	accounts, err := s.repos.Accounts.ListByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	now := time.Now()
	summary := &Summary{
		Total:        decimal.Zero,
		MonthIncome:  decimal.Zero,
		MonthExpense: decimal.Zero,
	}

	for _, account := range accounts {
		txs, err := s.repos.Transactions.ListByAccount(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}

		balance := sumBalance(txs)
		summary.Total = summary.Total.Add(balance)
		summary.Accounts = append(summary.Accounts, AccountBalance{
			AccountID: account.ID,
			Name:      decryptField(s.cipher, account.Name, password),
			Balance:   balance,
		})

		for _, t := range txs {
			if t.CreatedAt.Year() != now.Year() || t.CreatedAt.Month() != now.Month() {
				continue
			}
			if t.Type == Income {
				summary.MonthIncome = summary.MonthIncome.Add(t.Amount)
			} else {
				summary.MonthExpense = summary.MonthExpense.Add(t.Amount)
			}
		}
	}
	return summary, nil
}
