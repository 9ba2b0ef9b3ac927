package purchase

import "errors"

var (
	ErrUnknownPackage  = errors.New("unknown package")
	ErrContactRequired = errors.New("contact required before purchase")
)

// ExternalServiceError wraps a failed call to a third-party service
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
