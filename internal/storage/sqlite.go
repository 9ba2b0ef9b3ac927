package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const userColumns = `chat_id, full_name, phone, selected_package, payment_status, tx_ref, payment_date, created_at`

// SQLite stores user records in a local database file
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens the database file and creates the schema
func NewSQLite(dbPath string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	s := &SQLite{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database connection
func (s *SQLite) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLite) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			chat_id INTEGER PRIMARY KEY,
			full_name TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			selected_package TEXT NOT NULL DEFAULT '',
			payment_status TEXT NOT NULL DEFAULT 'pending',
			tx_ref TEXT,
			payment_date INTEGER,
			created_at INTEGER NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_tx_ref ON users(tx_ref)`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}

	return nil
}

// UpsertContact creates the user or updates name and phone
func (s *SQLite) UpsertContact(ctx context.Context, chatID int64, fullName, phone string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, full_name, phone, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
			full_name = excluded.full_name,
			phone = excluded.phone`,
		chatID, fullName, phone, time.Now().Unix(),
	)
	return err
}

// GetByIdentity returns the user with the given chat id
func (s *SQLite) GetByIdentity(ctx context.Context, chatID int64) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE chat_id = ?`,
		chatID,
	)
	return scanUser(row)
}

// GetByTransactionReference returns the user whose latest checkout has txRef
func (s *SQLite) GetByTransactionReference(ctx context.Context, txRef string) (*User, error) {
	if txRef == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE tx_ref = ?`,
		txRef,
	)
	return scanUser(row)
}

// BeginPurchase records a new checkout attempt and resets the status to pending
func (s *SQLite) BeginPurchase(ctx context.Context, chatID int64, packageName, txRef string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, selected_package, tx_ref, payment_status, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(chat_id) DO UPDATE SET
			selected_package = excluded.selected_package,
			tx_ref = excluded.tx_ref,
			payment_status = excluded.payment_status`,
		chatID, packageName, txRef, string(PaymentPending), time.Now().Unix(),
	)
	return err
}

// ResolvePayment stores the checkout outcome for txRef
func (s *SQLite) ResolvePayment(ctx context.Context, txRef string, status PaymentStatus, at time.Time) error {
	if txRef == "" {
		return ErrNotFound
	}

	result, err := s.db.ExecContext(ctx,
		"UPDATE users SET payment_status = ?, payment_date = ? WHERE tx_ref = ?",
		string(status), at.Unix(), txRef,
	)
	if err != nil {
		return err
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row *sql.Row) (*User, error) {
	var u User
	var status string
	var txRef sql.NullString
	var paymentDate sql.NullInt64
	var createdAt int64

	err := row.Scan(&u.ChatID, &u.FullName, &u.Phone, &u.SelectedPackage, &status, &txRef, &paymentDate, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u.PaymentStatus = PaymentStatus(status)
	u.TxRef = txRef.String
	u.CreatedAt = time.Unix(createdAt, 0)
	if paymentDate.Valid {
		t := time.Unix(paymentDate.Int64, 0)
		u.PaymentDate = &t
	}

	return &u, nil
}
