package storage

import "time"

// PaymentStatus is the outcome of the latest checkout for a user
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// User is the purchase record kept for one Telegram user
type User struct {
	ChatID          int64
	FullName        string
	Phone           string
	SelectedPackage string
	PaymentStatus   PaymentStatus
	TxRef           string
	PaymentDate     *time.Time
	CreatedAt       time.Time
}

// HasPhone reports whether contact capture has completed for the user
func (u *User) HasPhone() bool {
	return u != nil && u.Phone != ""
}
