package purchase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/suspectuso/gym-storefront/internal/chapa"
	"github.com/suspectuso/gym-storefront/internal/storage"
)

// CallbackStore is the part of the user store the callback handler needs
type CallbackStore interface {
	GetByTransactionReference(ctx context.Context, txRef string) (*storage.User, error)
	ResolvePayment(ctx context.Context, txRef string, status storage.PaymentStatus, at time.Time) error
}

// Notifier tells a user how their payment ended
type Notifier interface {
	NotifyPayment(ctx context.Context, chatID int64, packageName string, success bool) error
}

// CallbackHandler applies payment outcomes reported by the gateway
type CallbackHandler struct {
	store    CallbackStore
	states   *Tracker
	notifier Notifier
	log      *slog.Logger

	now func() time.Time
}

// NewCallbackHandler creates a new CallbackHandler
func NewCallbackHandler(store CallbackStore, states *Tracker, notifier Notifier, log *slog.Logger) *CallbackHandler {
	return &CallbackHandler{
		store:    store,
		states:   states,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// Resolve records the outcome for txRef and notifies the user. It returns
// storage.ErrNotFound, without touching any record, when no user holds txRef.
func (h *CallbackHandler) Resolve(ctx context.Context, txRef, status string) (*storage.User, error) {
	user, err := h.store.GetByTransactionReference(ctx, txRef)
	if err != nil {
		return nil, err
	}

	paymentStatus := ParseStatus(status)
	at := h.now()
	if err := h.store.ResolvePayment(ctx, txRef, paymentStatus, at); err != nil {
		return nil, fmt.Errorf("resolve payment: %w", err)
	}
	user.PaymentStatus = paymentStatus
	user.PaymentDate = &at
	h.states.Set(user.ChatID, StateResolved)

	h.log.Info("payment resolved",
		"user_id", user.ChatID,
		"tx_ref", txRef,
		"status", paymentStatus,
	)

	success := paymentStatus == storage.PaymentSuccess
	if err := h.notifier.NotifyPayment(ctx, user.ChatID, user.SelectedPackage, success); err != nil {
		h.log.Error("notify payment", "user_id", user.ChatID, "error", err)
	}

	return user, nil
}

// ParseStatus maps a gateway status to a payment status. Only the exact
// string "success" counts as paid.
func ParseStatus(status string) storage.PaymentStatus {
	if status == chapa.StatusSuccess {
		return storage.PaymentSuccess
	}
	return storage.PaymentFailed
}
