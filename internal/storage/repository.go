// Package storage persists users, accounts, categories and transactions in
// SQLite and computes the server-side monthly trend aggregation.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound                 = errors.New("not found")
	ErrEmailTaken               = errors.New("email already registered")
	ErrDefaultCategoryImmutable = errors.New("default categories cannot be modified")
	ErrCategoryMismatch         = errors.New("category type does not match transaction type")
)

// TrendPoint is one month of the server-computed trend, passed through to the
// API unmodified.
type TrendPoint struct {
	Month        string `json:"month"` // YYYY-MM
	TotalExpense int64  `json:"totalExpense"`
	TotalIncome  int64  `json:"totalIncome"`
}

// ExportRow is a transaction queued for export to the sheets ledger.
type ExportRow struct {
	Transaction core.Transaction
	UserID      string
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// The pragma goes in the DSN so every pooled connection enforces
	// foreign keys, not just the first one.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- Users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, email, name, passwordHash string) (core.User, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM users WHERE email = ?", email).Scan(&exists)
	if err != nil {
		return core.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists > 0 {
		return core.User{}, ErrEmailTaken
	}

	u := core.User{ID: uuid.NewString(), Email: email, Name: name}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (id, email, name, password_hash) VALUES (?, ?, ?, ?)",
		u.ID, u.Email, u.Name, passwordHash)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID)
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, string, error) {
	var u core.User
	var hash string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name, password_hash FROM users WHERE email = ?", email).
		Scan(&u.ID, &u.Email, &u.Name, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, "", ErrNotFound
	}
	if err != nil {
		return core.User{}, "", fmt.Errorf("get user by email: %w", err)
	}
	return u, hash, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	var u core.User
	err := r.db.QueryRowContext(ctx,
		"SELECT id, email, name FROM users WHERE id = ?", id).
		Scan(&u.ID, &u.Email, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, ErrNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// --- Accounts ---

func (r *SQLiteRepository) CreateAccount(ctx context.Context, userID string, a core.Account) (core.Account, error) {
	a.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO accounts (id, user_id, name, type, balance_cents, account_number) VALUES (?, ?, ?, ?, ?, ?)",
		a.ID, userID, a.Name, string(a.Type), a.Balance.Cents, a.AccountNumber)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID string) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, type, balance_cents, account_number FROM accounts WHERE user_id = ? ORDER BY created_at",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		var a core.Account
		var accType string
		if err := rows.Scan(&a.ID, &a.Name, &accType, &a.Balance.Cents, &a.AccountNumber); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.Type = core.AccountType(accType)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID string, a core.Account) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE accounts SET name = ?, type = ?, balance_cents = ?, account_number = ?, updated_at = datetime('now') WHERE id = ? AND user_id = ?",
		a.Name, string(a.Type), a.Balance.Cents, a.AccountNumber, a.ID, userID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM accounts WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	return requireRow(res)
}

// --- Categories ---

// ListCategories returns the user's own categories plus the system defaults.
func (r *SQLiteRepository) ListCategories(ctx context.Context, userID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, type, icon, color, is_default FROM categories WHERE user_id = ? OR user_id IS NULL ORDER BY is_default DESC, name",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var cats []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, userID string, c core.Category) (core.Category, error) {
	c.ID = uuid.NewString()
	c.IsDefault = false
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (id, user_id, name, type, icon, color, is_default) VALUES (?, ?, ?, ?, ?, ?, 0)",
		c.ID, userID, c.Name, string(c.Type), c.Icon, c.Color)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// UpdateCategory modifies a user-owned category. Default categories are
// immutable: the guard lives here, not only in any UI.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, userID string, c core.Category) error {
	if err := r.guardCategoryMutable(ctx, userID, c.ID); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, type = ?, icon = ?, color = ? WHERE id = ? AND user_id = ? AND is_default = 0",
		c.Name, string(c.Type), c.Icon, c.Color, c.ID, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, userID, id string) error {
	if err := r.guardCategoryMutable(ctx, userID, id); err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ? AND is_default = 0", id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) guardCategoryMutable(ctx context.Context, userID, id string) error {
	var isDefault int
	var owner sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT is_default, user_id FROM categories WHERE id = ?", id).Scan(&isDefault, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if isDefault == 1 {
		return ErrDefaultCategoryImmutable
	}
	if !owner.Valid || owner.String != userID {
		return ErrNotFound
	}
	return nil
}

// categoryVisible reports whether the category exists and is usable by the
// user (their own or a system default), and that its type matches.
func (r *SQLiteRepository) categoryVisible(ctx context.Context, userID, categoryID string, txType core.TransactionType) error {
	var catType string
	err := r.db.QueryRowContext(ctx,
		"SELECT type FROM categories WHERE id = ? AND (user_id = ? OR user_id IS NULL)",
		categoryID, userID).Scan(&catType)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load category: %w", err)
	}
	if core.TransactionType(catType) != txType {
		return ErrCategoryMismatch
	}
	return nil
}

// --- Transactions ---

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	t.ID = uuid.NewString()
	var categoryID interface{}
	if t.Category != nil {
		if err := r.categoryVisible(ctx, userID, t.Category.ID, t.Type); err != nil {
			return core.Transaction{}, err
		}
		categoryID = t.Category.ID
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO transactions (id, user_id, title, amount_cents, type, transaction_date, category_id) VALUES (?, ?, ?, ?, ?, ?, ?)",
		t.ID, userID, t.Title, t.Amount.Cents, string(t.Type), t.TransactionDate.UTC().Format(time.RFC3339), categoryID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"transaction_id", t.ID,
		"amount_cents", t.Amount.Cents,
		"type", string(t.Type))
	return r.GetTransaction(ctx, userID, t.ID)
}

const transactionColumns = `t.id, t.title, t.amount_cents, t.type, t.transaction_date,
	c.id, c.name, c.type, c.icon, c.color, c.is_default`

const transactionJoin = `FROM transactions t LEFT JOIN categories c ON c.id = t.category_id`

func (r *SQLiteRepository) ListTransactions(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" "+transactionJoin+" WHERE t.user_id = ? ORDER BY t.transaction_date DESC, t.created_at DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, userID, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" "+transactionJoin+" WHERE t.id = ? AND t.user_id = ?",
		id, userID)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ErrNotFound
	}
	return t, err
}

// UpdateTransaction replaces the mutable fields and re-queues the row for
// export.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, userID string, t core.Transaction) (core.Transaction, error) {
	var categoryID interface{}
	if t.Category != nil {
		if err := r.categoryVisible(ctx, userID, t.Category.ID, t.Type); err != nil {
			return core.Transaction{}, err
		}
		categoryID = t.Category.ID
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET title = ?, amount_cents = ?, type = ?, transaction_date = ?, category_id = ?, export_status = 'pending', updated_at = datetime('now') WHERE id = ? AND user_id = ?",
		t.Title, t.Amount.Cents, string(t.Type), t.TransactionDate.UTC().Format(time.RFC3339), categoryID, t.ID, userID)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := requireRow(res); err != nil {
		return core.Transaction{}, err
	}
	return r.GetTransaction(ctx, userID, t.ID)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM transactions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

// --- Monthly trend ---

// MonthlyTrend aggregates per-month expense and income totals for the last
// monthsBack months including the current one, oldest month first.
func (r *SQLiteRepository) MonthlyTrend(ctx context.Context, userID string, monthsBack int, now time.Time) ([]TrendPoint, error) {
	cutoff := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(monthsBack - 1), 0)

	rows, err := r.db.QueryContext(ctx, `
		SELECT strftime('%Y-%m', transaction_date) AS month,
		       COALESCE(SUM(CASE WHEN type = 'expense' THEN amount_cents END), 0),
		       COALESCE(SUM(CASE WHEN type = 'income' THEN amount_cents END), 0)
		FROM transactions
		WHERE user_id = ? AND transaction_date >= ?
		GROUP BY month
		ORDER BY month`,
		userID, cutoff.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("monthly trend: %w", err)
	}
	defer rows.Close()

	var trend []TrendPoint
	for rows.Next() {
		var p TrendPoint
		if err := rows.Scan(&p.Month, &p.TotalExpense, &p.TotalIncome); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		trend = append(trend, p)
	}
	return trend, rows.Err()
}

// --- Export bookkeeping ---

// GetPendingExportRows returns transactions that still need to be appended to
// the sheets ledger. This backs up the AMQP path in case messages are lost.
func (r *SQLiteRepository) GetPendingExportRows(ctx context.Context, limit int) ([]ExportRow, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+transactionColumns+", t.user_id "+transactionJoin+" WHERE t.export_status = 'pending' ORDER BY t.created_at LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("get pending export rows: %w", err)
	}
	defer rows.Close()

	var out []ExportRow
	for rows.Next() {
		row, err := scanExportRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// GetExportRow loads a single transaction for export regardless of owner.
func (r *SQLiteRepository) GetExportRow(ctx context.Context, id string) (ExportRow, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+", t.user_id "+transactionJoin+" WHERE t.id = ?", id)
	out, err := scanExportRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ExportRow{}, ErrNotFound
	}
	return out, err
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET export_status = 'exported' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE transactions SET export_status = 'error' WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}
	slog.WarnContext(ctx, "Transaction marked with export error", "transaction_id", id)
	return nil
}

// --- scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var txType, dateStr string
	var catID, catName, catType, catIcon, catColor sql.NullString
	var catDefault sql.NullInt64

	err := row.Scan(&t.ID, &t.Title, &t.Amount.Cents, &txType, &dateStr,
		&catID, &catName, &catType, &catIcon, &catColor, &catDefault)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Transaction{}, err
		}
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	t.Type = core.TransactionType(txType)
	t.TransactionDate, err = time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	if catID.Valid {
		t.Category = &core.Category{
			ID:        catID.String,
			Name:      catName.String,
			Type:      core.TransactionType(catType.String),
			Icon:      catIcon.String,
			Color:     catColor.String,
			IsDefault: catDefault.Int64 == 1,
		}
	}
	return t, nil
}

func scanExportRow(row rowScanner) (ExportRow, error) {
	var t core.Transaction
	var txType, dateStr, userID string
	var catID, catName, catType, catIcon, catColor sql.NullString
	var catDefault sql.NullInt64

	err := row.Scan(&t.ID, &t.Title, &t.Amount.Cents, &txType, &dateStr,
		&catID, &catName, &catType, &catIcon, &catColor, &catDefault, &userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ExportRow{}, err
		}
		return ExportRow{}, fmt.Errorf("scan export row: %w", err)
	}

	t.Type = core.TransactionType(txType)
	t.TransactionDate, err = time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return ExportRow{}, fmt.Errorf("parse transaction date %q: %w", dateStr, err)
	}
	if catID.Valid {
		t.Category = &core.Category{
			ID:        catID.String,
			Name:      catName.String,
			Type:      core.TransactionType(catType.String),
			Icon:      catIcon.String,
			Color:     catColor.String,
			IsDefault: catDefault.Int64 == 1,
		}
	}
	return ExportRow{Transaction: t, UserID: userID}, nil
}

func scanCategory(rows *sql.Rows) (core.Category, error) {
	var c core.Category
	var catType string
	var isDefault int
	if err := rows.Scan(&c.ID, &c.Name, &catType, &c.Icon, &c.Color, &isDefault); err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w", err)
	}
	c.Type = core.TransactionType(catType)
	c.IsDefault = isDefault == 1
	return c, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
