package chapa

// Customization is the checkout page branding
type Customization struct {
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// InitializeRequest is the body of POST /transaction/initialize
type InitializeRequest struct {
	Amount        int           `json:"amount"`
	Currency      string        `json:"currency"`
	Email         string        `json:"email"`
	FirstName     string        `json:"first_name"`
	LastName      string        `json:"last_name"`
	TxRef         string        `json:"tx_ref"`
	CallbackURL   string        `json:"callback_url"`
	ReturnURL     string        `json:"return_url"`
	Customization Customization `json:"customization"`
}

// InitializeResponse is returned by POST /transaction/initialize
type InitializeResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
	} `json:"data"`
}

// CallbackPayload is what Chapa posts to the callback URL. A missing
// status is a failed payment, not a malformed payload.
type CallbackPayload struct {
	TxRef  string `json:"tx_ref" validate:"required,max=128"`
	Status string `json:"status"`
}
