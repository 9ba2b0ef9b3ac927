package purchase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/suspectuso/gym-storefront/internal/chapa"
	"github.com/suspectuso/gym-storefront/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// memStore is an in-memory user store
type memStore struct {
	mu     sync.Mutex
	users  map[int64]storage.User
	writes int
}

func newMemStore() *memStore {
	return &memStore{users: make(map[int64]storage.User)}
}

func (s *memStore) UpsertContact(ctx context.Context, chatID int64, fullName, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	u, ok := s.users[chatID]
	if !ok {
		u = storage.User{ChatID: chatID, PaymentStatus: storage.PaymentPending, CreatedAt: time.Now()}
	}
	u.FullName = fullName
	u.Phone = phone
	s.users[chatID] = u
	return nil
}

func (s *memStore) GetByIdentity(ctx context.Context, chatID int64) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[chatID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *memStore) GetByTransactionReference(ctx context.Context, txRef string) (*storage.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if txRef != "" && u.TxRef == txRef {
			u := u
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memStore) BeginPurchase(ctx context.Context, chatID int64, packageName, txRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	u, ok := s.users[chatID]
	if !ok {
		u = storage.User{ChatID: chatID, CreatedAt: time.Now()}
	}
	u.SelectedPackage = packageName
	u.TxRef = txRef
	u.PaymentStatus = storage.PaymentPending
	s.users[chatID] = u
	return nil
}

func (s *memStore) ResolvePayment(ctx context.Context, txRef string, status storage.PaymentStatus, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, u := range s.users {
		if txRef != "" && u.TxRef == txRef {
			s.writes++
			u.PaymentStatus = status
			u.PaymentDate = &at
			s.users[id] = u
			return nil
		}
	}
	return storage.ErrNotFound
}

// fakeGateway records initialize calls
type fakeGateway struct {
	mu       sync.Mutex
	requests []chapa.InitializeRequest
	url      string
	err      error
}

func (g *fakeGateway) Initialize(ctx context.Context, req *chapa.InitializeRequest) (*chapa.InitializeResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, *req)
	if g.err != nil {
		return nil, g.err
	}
	resp := &chapa.InitializeResponse{Status: chapa.StatusSuccess, Message: "Hosted Link"}
	resp.Data.CheckoutURL = g.url + "/" + req.TxRef
	return resp, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

type notification struct {
	chatID      int64
	packageName string
	success     bool
}

// fakeNotifier records payment notifications
type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	err  error
}

func (n *fakeNotifier) NotifyPayment(ctx context.Context, chatID int64, packageName string, success bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification{chatID, packageName, success})
	return n.err
}
