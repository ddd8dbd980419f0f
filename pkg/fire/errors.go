package fire

import "fmt"

// AuthError means an access token could not be obtained or the token
// response was malformed.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("fire: auth: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// RequestError means payment-request creation failed.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string { return fmt.Sprintf("fire: payment request: %v", e.Err) }
func (e *RequestError) Unwrap() error { return e.Err }

// LookupError means a status or payment-list query failed or returned an
// unparseable body.
type LookupError struct {
	Err error
}

func (e *LookupError) Error() string { return fmt.Sprintf("fire: lookup: %v", e.Err) }
func (e *LookupError) Unwrap() error { return e.Err }
