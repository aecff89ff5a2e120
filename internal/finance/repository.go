package finance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for financial persistence.
type Repository interface {
	ListCategories(ctx context.Context, txType string) ([]Category, error)
	AddCategory(ctx context.Context, txType, name string) (*Category, error)
	GetCategory(ctx context.Context, txType string, id int64) (*Category, error)

	CreateTransaction(ctx context.Context, t *Transaction) error
	GetTransaction(ctx context.Context, id int64) (*Transaction, error)
	UpdateTransaction(ctx context.Context, t *Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactions(ctx context.Context, f Filter) ([]Transaction, error)

	SummaryBetween(ctx context.Context, from, to string) (*Summary, error)
	CategoryTotals(ctx context.Context, from, to string) ([]CategoryTotal, error)
	MonthlyTrends(ctx context.Context, year int) ([]MonthlyTrend, error)
	BalanceBefore(ctx context.Context, date string) (float64, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewRepository creates a new SQLite-backed finance repository.
func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// categoryTable maps a transaction type to its category table.
func categoryTable(txType string) (string, error) {
	switch txType {
	case TypeIncome:
		return "income_categories", nil
	case TypeExpense:
		return "expense_categories", nil
	default:
		return "", ErrInvalidType
	}
}

// ListCategories returns the categories for a transaction type,
// ordered by name.
func (r *SQLiteRepository) ListCategories(ctx context.Context, txType string) ([]Category, error) {
	table, err := categoryTable(txType)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM "+table+" ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	if categories == nil {
		categories = []Category{}
	}
	return categories, nil
}

// AddCategory inserts a new category for the given transaction type.
func (r *SQLiteRepository) AddCategory(ctx context.Context, txType, name string) (*Category, error) {
	table, err := categoryTable(txType)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrCategoryNameEmpty
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO "+table+" (name) VALUES (?)", name)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrCategoryExists
		}
		return nil, fmt.Errorf("adding category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading new category id: %w", err)
	}
	return &Category{ID: id, Name: name}, nil
}

// GetCategory retrieves one category by ID within a transaction type.
func (r *SQLiteRepository) GetCategory(ctx context.Context, txType string, id int64) (*Category, error) {
	table, err := categoryTable(txType)
	if err != nil {
		return nil, err
	}

	var c Category
	err = r.db.QueryRowContext(ctx, "SELECT id, name FROM "+table+" WHERE id = ?", id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("getting category: %w", err)
	}
	return &c, nil
}

const transactionColumns = `t.id, t.transaction_date, t.transaction_type, t.category_id, t.category_name,
	t.amount, t.description, t.member_id, m.name, t.created_at`

const transactionJoin = ` FROM transactions t LEFT JOIN members m ON m.id = t.member_id `

// CreateTransaction inserts a new entry, denormalising the category
// name from the matching category table.
func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t *Transaction) error {
	cat, err := r.GetCategory(ctx, t.Type, t.CategoryID)
	if err != nil {
		return err
	}
	t.CategoryName = cat.Name

	now := time.Now().UTC()
	t.CreatedAt = now

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (transaction_date, transaction_type, category_id, category_name, amount, description, member_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Date, t.Type, t.CategoryID, t.CategoryName, t.Amount,
		nullStr(t.Description), nullInt64(t.MemberID), now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating transaction: %w", err)
	}

	t.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading new transaction id: %w", err)
	}
	return nil
}

// GetTransaction retrieves one entry with the member name joined in.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (*Transaction, error) {
	return scanTransactionFrom(r.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+transactionJoin+"WHERE t.id = ?", id))
}

// UpdateTransaction replaces an entry's fields, re-resolving the
// category name.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t *Transaction) error {
	cat, err := r.GetCategory(ctx, t.Type, t.CategoryID)
	if err != nil {
		return err
	}
	t.CategoryName = cat.Name

	result, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET transaction_date = ?, transaction_type = ?, category_id = ?,
		 category_name = ?, amount = ?, description = ?, member_id = ? WHERE id = ?`,
		t.Date, t.Type, t.CategoryID, t.CategoryName, t.Amount,
		nullStr(t.Description), nullInt64(t.MemberID), t.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// DeleteTransaction removes an entry.
func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting transaction: %w", err)
	}

	rows, _ := result.RowsAffected() //nolint:errcheck // always succeeds on SQLite
	if rows == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

// ListTransactions returns entries matching the filter, newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, f Filter) ([]Transaction, error) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "t.transaction_type = ?")
		args = append(args, f.Type)
	}
	if f.From != "" {
		conds = append(conds, "t.transaction_date >= ?")
		args = append(args, f.From)
	}
	if f.To != "" {
		conds = append(conds, "t.transaction_date <= ?")
		args = append(args, f.To)
	}
	if f.MemberID > 0 {
		conds = append(conds, "t.member_id = ?")
		args = append(args, f.MemberID)
	}
	if f.CategoryID > 0 {
		conds = append(conds, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}

	q := "SELECT " + transactionColumns + transactionJoin
	if len(conds) > 0 {
		q += "WHERE " + strings.Join(conds, " AND ") + " "
	}
	q += "ORDER BY t.transaction_date DESC, t.id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []Transaction
	for rows.Next() {
		t, err := scanTransactionFrom(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}

	if txns == nil {
		txns = []Transaction{}
	}
	return txns, nil
}

// SummaryBetween totals income and expenses in an inclusive date range.
func (r *SQLiteRepository) SummaryBetween(ctx context.Context, from, to string) (*Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT transaction_type, COALESCE(SUM(amount), 0), COUNT(*)
		 FROM transactions
		 WHERE transaction_date >= ? AND transaction_date <= ?
		 GROUP BY transaction_type`, from, to)
	if err != nil {
		return nil, fmt.Errorf("summarising transactions: %w", err)
	}
	defer rows.Close()

	var s Summary
	for rows.Next() {
		var txType string
		var total float64
		var count int
		if err := rows.Scan(&txType, &total, &count); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		s.Count += count
		switch txType {
		case TypeIncome:
			s.Income = total
		case TypeExpense:
			s.Expenses = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating summary: %w", err)
	}

	s.Net = s.Income - s.Expenses
	return &s, nil
}

// CategoryTotals aggregates per category in an inclusive date range,
// largest totals first.
func (r *SQLiteRepository) CategoryTotals(ctx context.Context, from, to string) ([]CategoryTotal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_name, transaction_type, COALESCE(SUM(amount), 0), COUNT(*)
		 FROM transactions
		 WHERE transaction_date >= ? AND transaction_date <= ?
		 GROUP BY category_name, transaction_type
		 ORDER BY SUM(amount) DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("aggregating categories: %w", err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Type, &ct.Total, &ct.Count); err != nil {
			return nil, fmt.Errorf("scanning category total: %w", err)
		}
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating category totals: %w", err)
	}

	if totals == nil {
		totals = []CategoryTotal{}
	}
	return totals, nil
}

// MonthlyTrends returns income versus expenses for each month of a
// year. Months with no activity appear with zero totals.
func (r *SQLiteRepository) MonthlyTrends(ctx context.Context, year int) ([]MonthlyTrend, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT strftime('%Y-%m', transaction_date), transaction_type, COALESCE(SUM(amount), 0)
		 FROM transactions
		 WHERE strftime('%Y', transaction_date) = ?
		 GROUP BY strftime('%Y-%m', transaction_date), transaction_type`,
		fmt.Sprintf("%04d", year))
	if err != nil {
		return nil, fmt.Errorf("aggregating monthly trends: %w", err)
	}
	defer rows.Close()

	byMonth := make(map[string]*MonthlyTrend, 12)
	trends := make([]MonthlyTrend, 12)
	for i := 0; i < 12; i++ {
		month := fmt.Sprintf("%04d-%02d", year, i+1)
		trends[i] = MonthlyTrend{Month: month}
		byMonth[month] = &trends[i]
	}

	for rows.Next() {
		var month, txType string
		var total float64
		if err := rows.Scan(&month, &txType, &total); err != nil {
			return nil, fmt.Errorf("scanning monthly trend: %w", err)
		}
		mt, ok := byMonth[month]
		if !ok {
			continue
		}
		switch txType {
		case TypeIncome:
			mt.Income = total
		case TypeExpense:
			mt.Expenses = total
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly trends: %w", err)
	}

	for i := range trends {
		trends[i].Net = trends[i].Income - trends[i].Expenses
	}
	return trends, nil
}

// BalanceBefore returns the running balance of all activity strictly
// before a date. Used as the opening balance for period reports.
func (r *SQLiteRepository) BalanceBefore(ctx context.Context, date string) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN transaction_type = ? THEN amount ELSE -amount END), 0)
		 FROM transactions WHERE transaction_date < ?`, TypeIncome, date).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("computing opening balance: %w", err)
	}
	return balance, nil
}

// scanner is an interface for sql.Row and sql.Rows Scan methods.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransactionFrom(s scanner) (*Transaction, error) {
	var t Transaction
	var description, memberName sql.NullString
	var memberID sql.NullInt64
	var createdAt string

	err := s.Scan(&t.ID, &t.Date, &t.Type, &t.CategoryID, &t.CategoryName,
		&t.Amount, &description, &memberID, &memberName, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("scanning transaction: %w", err)
	}

	t.Description = description.String
	if memberID.Valid {
		t.MemberID = &memberID.Int64
	}
	t.MemberName = memberName.String
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt) //nolint:errcheck // format is controlled

	return &t, nil
}

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
