package purchase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/suspectuso/gym-storefront/internal/catalog"
	"github.com/suspectuso/gym-storefront/internal/chapa"
	"github.com/suspectuso/gym-storefront/internal/storage"
)

// Store is the part of the user store the controller needs
type Store interface {
	UpsertContact(ctx context.Context, chatID int64, fullName, phone string) error
	GetByIdentity(ctx context.Context, chatID int64) (*storage.User, error)
	BeginPurchase(ctx context.Context, chatID int64, packageName, txRef string) error
}

// PaymentGateway starts hosted checkouts
type PaymentGateway interface {
	Initialize(ctx context.Context, req *chapa.InitializeRequest) (*chapa.InitializeResponse, error)
}

// Settings are the fixed checkout parameters
type Settings struct {
	Currency    string
	CallbackURL string
	ReturnURL   string
	EmailDomain string
}

// Contact is a phone number shared by a user
type Contact struct {
	ChatID    int64
	FirstName string
	LastName  string
	Phone     string
}

// FullName joins first and last name
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Checkout is a started payment for a package
type Checkout struct {
	Package     catalog.Package
	TxRef       string
	CheckoutURL string
}

// Controller drives users from package selection to a hosted checkout
type Controller struct {
	catalog  *catalog.Catalog
	store    Store
	gateway  PaymentGateway
	settings Settings
	states   *Tracker
	log      *slog.Logger

	newTxRef func() string
}

// NewController creates a new Controller
func NewController(cat *catalog.Catalog, store Store, gateway PaymentGateway, settings Settings, states *Tracker, log *slog.Logger) *Controller {
	return &Controller{
		catalog:  cat,
		store:    store,
		gateway:  gateway,
		settings: settings,
		states:   states,
		log:      log,
		newTxRef: NewTransactionRef,
	}
}

// Packages lists the catalog
func (c *Controller) Packages() []catalog.Package {
	return c.catalog.List()
}

// Currency is the currency every package is priced in
func (c *Controller) Currency() string {
	return c.settings.Currency
}

// State returns the user's flow state
func (c *Controller) State(chatID int64) FlowState {
	return c.states.Get(chatID)
}

// Start resets the user to browsing
func (c *Controller) Start(chatID int64) {
	c.states.Clear(chatID)
}

// CaptureContact stores the user's name and phone
func (c *Controller) CaptureContact(ctx context.Context, contact Contact) error {
	if contact.Phone == "" {
		return errors.New("contact has no phone number")
	}

	if err := c.store.UpsertContact(ctx, contact.ChatID, contact.FullName(), contact.Phone); err != nil {
		return fmt.Errorf("upsert contact: %w", err)
	}
	c.states.Set(contact.ChatID, StateContactCaptured)

	c.log.Info("contact captured", "user_id", contact.ChatID)
	return nil
}

// SelectPackage starts a checkout for packageID. It returns ErrUnknownPackage
// for ids not in the catalog, ErrContactRequired when no phone is on file and
// *ExternalServiceError when the gateway call fails; none of these change the
// stored payment status.
func (c *Controller) SelectPackage(ctx context.Context, chatID int64, packageID string) (*Checkout, error) {
	pkg, ok := c.catalog.Find(packageID)
	if !ok {
		return nil, ErrUnknownPackage
	}

	user, err := c.store.GetByIdentity(ctx, chatID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !user.HasPhone() {
		c.states.Set(chatID, StateContactRequested)
		return nil, ErrContactRequired
	}

	txRef := c.newTxRef()
	if err := c.store.BeginPurchase(ctx, chatID, pkg.Name, txRef); err != nil {
		return nil, fmt.Errorf("begin purchase: %w", err)
	}

	firstName, lastName := splitName(user.FullName)
	resp, err := c.gateway.Initialize(ctx, &chapa.InitializeRequest{
		Amount:      pkg.Price,
		Currency:    c.settings.Currency,
		Email:       PayerEmail(user.FullName, c.settings.EmailDomain),
		FirstName:   firstName,
		LastName:    lastName,
		TxRef:       txRef,
		CallbackURL: c.settings.CallbackURL,
		ReturnURL:   c.settings.ReturnURL,
		Customization: chapa.Customization{
			Title:       pkg.Name,
			Description: pkg.Description,
		},
	})
	if err != nil {
		c.log.Error("initialize payment", "user_id", chatID, "tx_ref", txRef, "error", err)
		return nil, &ExternalServiceError{Service: "chapa", Err: err}
	}

	c.states.Set(chatID, StateCheckoutInitiated)
	c.log.Info("checkout initiated", "user_id", chatID, "package", pkg.ID, "tx_ref", txRef)

	return &Checkout{
		Package:     pkg,
		TxRef:       txRef,
		CheckoutURL: resp.Data.CheckoutURL,
	}, nil
}

// NewTransactionRef returns "TX-<unix millis>-<8 random hex chars>"
func NewTransactionRef() string {
	return fmt.Sprintf("TX-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// PayerEmail builds the checkout email from the display name: the first
// space becomes a dot. Names with more spaces keep them.
func PayerEmail(fullName, domain string) string {
	return strings.Replace(fullName, " ", ".", 1) + "@" + domain
}

func splitName(fullName string) (first, last string) {
	parts := strings.Fields(fullName)
	if len(parts) > 0 {
		first = parts[0]
	}
	if len(parts) > 1 {
		last = parts[1]
	}
	return first, last
}
