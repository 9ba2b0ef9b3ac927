package storage

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// Store persists user records. Implementations are safe for concurrent use;
// concurrent writes to the same record are last-write-wins.
type Store interface {
	UpsertContact(ctx context.Context, chatID int64, fullName, phone string) error
	GetByIdentity(ctx context.Context, chatID int64) (*User, error)
	GetByTransactionReference(ctx context.Context, txRef string) (*User, error)
	BeginPurchase(ctx context.Context, chatID int64, packageName, txRef string) error
	ResolvePayment(ctx context.Context, txRef string, status PaymentStatus, at time.Time) error
	Close(ctx context.Context) error
}

// Open picks a backend from the connection string: MongoDB for mongodb://
// and mongodb+srv:// URIs, otherwise a SQLite database file.
func Open(ctx context.Context, dsn string) (Store, error) {
	if strings.HasPrefix(dsn, "mongodb://") || strings.HasPrefix(dsn, "mongodb+srv://") {
		return NewMongo(ctx, dsn)
	}
	return NewSQLite(strings.TrimPrefix(dsn, "sqlite://"))
}
