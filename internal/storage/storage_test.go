package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) Store {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "gym.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func newMongoStore(t *testing.T) Store {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	m, err := NewMongo(ctx, uri)
	require.NoError(t, err)
	require.NoError(t, m.users.Drop(ctx))
	require.NoError(t, m.init(ctx))
	t.Cleanup(func() { m.Close(context.Background()) })
	return m
}

func TestStores(t *testing.T) {
	backends := []struct {
		name string
		open func(t *testing.T) Store
	}{
		{"SQLite", newSQLiteStore},
		{"Mongo", newMongoStore},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			t.Run("UpsertContactIdempotent", func(t *testing.T) { testUpsertContactIdempotent(t, b.open(t)) })
			t.Run("UpsertContactUpdates", func(t *testing.T) { testUpsertContactUpdates(t, b.open(t)) })
			t.Run("GetMissing", func(t *testing.T) { testGetMissing(t, b.open(t)) })
			t.Run("BeginPurchase", func(t *testing.T) { testBeginPurchase(t, b.open(t)) })
			t.Run("BeginPurchaseCreatesRecord", func(t *testing.T) { testBeginPurchaseCreatesRecord(t, b.open(t)) })
			t.Run("ResolvePayment", func(t *testing.T) { testResolvePayment(t, b.open(t)) })
			t.Run("ResolvePaymentUnknown", func(t *testing.T) { testResolvePaymentUnknown(t, b.open(t)) })
		})
	}
}

func testUpsertContactIdempotent(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertContact(ctx, 42, "Abebe Kebede", "+251911000000"))
	first, err := s.GetByIdentity(ctx, 42)
	require.NoError(t, err)

	require.NoError(t, s.UpsertContact(ctx, 42, "Abebe Kebede", "+251911000000"))
	second, err := s.GetByIdentity(ctx, 42)
	require.NoError(t, err)

	assert.Equal(t, first.ChatID, second.ChatID)
	assert.Equal(t, first.FullName, second.FullName)
	assert.Equal(t, first.Phone, second.Phone)
	assert.Equal(t, first.PaymentStatus, second.PaymentStatus)
	assert.Equal(t, first.TxRef, second.TxRef)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))

	assert.Equal(t, PaymentPending, second.PaymentStatus)
	assert.True(t, second.HasPhone())
}

func testUpsertContactUpdates(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.BeginPurchase(ctx, 7, "Day Pass", "TX-1"))
	require.NoError(t, s.UpsertContact(ctx, 7, "Sara", "+251922000000"))

	u, err := s.GetByIdentity(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Sara", u.FullName)
	assert.Equal(t, "+251922000000", u.Phone)
	assert.Equal(t, "Day Pass", u.SelectedPackage)
	assert.Equal(t, "TX-1", u.TxRef)
}

func testGetMissing(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.GetByIdentity(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetByTransactionReference(ctx, "TX-missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.UpsertContact(ctx, 1, "No Purchase", "+1"))
	_, err = s.GetByTransactionReference(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func testBeginPurchase(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertContact(ctx, 42, "Abebe Kebede", "+251911000000"))
	require.NoError(t, s.BeginPurchase(ctx, 42, "Basic Monthly", "TX-1"))
	require.NoError(t, s.ResolvePayment(ctx, "TX-1", PaymentFailed, time.Now()))

	require.NoError(t, s.BeginPurchase(ctx, 42, "Premium Annual", "TX-2"))

	u, err := s.GetByIdentity(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "Premium Annual", u.SelectedPackage)
	assert.Equal(t, "TX-2", u.TxRef)
	assert.Equal(t, PaymentPending, u.PaymentStatus)
	assert.Equal(t, "+251911000000", u.Phone)

	_, err = s.GetByTransactionReference(ctx, "TX-1")
	assert.ErrorIs(t, err, ErrNotFound)

	byRef, err := s.GetByTransactionReference(ctx, "TX-2")
	require.NoError(t, err)
	assert.Equal(t, int64(42), byRef.ChatID)
}

func testBeginPurchaseCreatesRecord(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.BeginPurchase(ctx, 9, "Day Pass", "TX-9"))

	u, err := s.GetByIdentity(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, "Day Pass", u.SelectedPackage)
	assert.Equal(t, PaymentPending, u.PaymentStatus)
	assert.False(t, u.HasPhone())
}

func testResolvePayment(t *testing.T, s Store) {
	ctx := context.Background()
	at := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)

	require.NoError(t, s.UpsertContact(ctx, 42, "Abebe Kebede", "+251911000000"))
	require.NoError(t, s.BeginPurchase(ctx, 42, "Basic Monthly", "TX-1"))
	require.NoError(t, s.ResolvePayment(ctx, "TX-1", PaymentSuccess, at))

	u, err := s.GetByTransactionReference(ctx, "TX-1")
	require.NoError(t, err)
	assert.Equal(t, PaymentSuccess, u.PaymentStatus)
	require.NotNil(t, u.PaymentDate)
	assert.True(t, at.Equal(*u.PaymentDate), "payment date %v", u.PaymentDate)
}

func testResolvePaymentUnknown(t *testing.T, s Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertContact(ctx, 42, "Abebe Kebede", "+251911000000"))
	require.NoError(t, s.BeginPurchase(ctx, 42, "Basic Monthly", "TX-1"))

	err := s.ResolvePayment(ctx, "TX-other", PaymentSuccess, time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.ResolvePayment(ctx, "", PaymentSuccess, time.Now()), ErrNotFound)

	u, err := s.GetByIdentity(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, PaymentPending, u.PaymentStatus)
	assert.Nil(t, u.PaymentDate)
}

func TestOpenSelectsSQLite(t *testing.T) {
	s, err := Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "gym.db"))
	require.NoError(t, err)
	defer s.Close(context.Background())

	_, ok := s.(*SQLite)
	assert.True(t, ok)
}

func TestOpenRejectsBadMongoURI(t *testing.T) {
	_, err := Open(context.Background(), "mongodb://")
	assert.Error(t, err)
}
