// Package common defines the domain error taxonomy shared by all engines.
// Every expected business failure is a sentinel *Error carrying a stable
// wire code; callers match with errors.Is and the boundary layer serializes
// Code/Message without exposing storage internals.
package common

import "errors"

// Kind classifies an error for the boundary layer's transport mapping.
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindInvalidState      Kind = "invalid_state"
	KindExpired           Kind = "expired"
	KindUnauthorized      Kind = "unauthorized"
	KindInsufficientFunds Kind = "insufficient_funds"
	KindInternal          Kind = "internal"
)

// Error is a domain error with a stable client-facing code.
type Error struct {
	Code    string
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	// wallet errors
	ErrInsufficientFunds = &Error{Code: "WALLET_001", Kind: KindInsufficientFunds, Message: "insufficient funds"}
	ErrWalletNotFound    = &Error{Code: "WALLET_002", Kind: KindNotFound, Message: "wallet not found"}

	// auth errors
	ErrInvalidCredentials     = &Error{Code: "AUTH_001", Kind: KindUnauthorized, Message: "invalid phone number or PIN"}
	ErrAccountNotVerified     = &Error{Code: "AUTH_002", Kind: KindUnauthorized, Message: "account is not verified"}
	ErrInvalidToken           = &Error{Code: "AUTH_003", Kind: KindUnauthorized, Message: "invalid token"}
	ErrInvalidOTP             = &Error{Code: "AUTH_004", Kind: KindUnauthorized, Message: "invalid or expired OTP"}
	ErrTokenExpired           = &Error{Code: "AUTH_005", Kind: KindExpired, Message: "token expired"}
	ErrIncorrectPin           = &Error{Code: "AUTH_006", Kind: KindUnauthorized, Message: "incorrect PIN"}
	ErrSamePin                = &Error{Code: "AUTH_007", Kind: KindValidation, Message: "new PIN must differ from the old one"}
	ErrPhoneAlreadyRegistered = &Error{Code: "AUTH_008", Kind: KindConflict, Message: "phone number already registered"}
	ErrNoEligibleAccount      = &Error{Code: "AUTH_009", Kind: KindNotFound, Message: "no eligible account for this phone number"}
	ErrAlreadyRegistered      = &Error{Code: "AUTH_010", Kind: KindConflict, Message: "registration already finalized"}

	// transfer errors
	ErrRecipientNotFound = &Error{Code: "TRANSFER_001", Kind: KindNotFound, Message: "recipient not found"}
	ErrSelfTransfer      = &Error{Code: "TRANSFER_002", Kind: KindValidation, Message: "cannot transfer to own account"}
	ErrAlreadyProcessed  = &Error{Code: "TRANSFER_003", Kind: KindNotFound, Message: "not found or already processed"}
	ErrPendingExpired    = &Error{Code: "TRANSFER_004", Kind: KindExpired, Message: "pending operation has expired"}
	ErrInvalidAmount     = &Error{Code: "TRANSFER_005", Kind: KindValidation, Message: "amount must be positive"}

	// payment errors
	ErrInvalidQRCode      = &Error{Code: "PAYMENT_001", Kind: KindValidation, Message: "invalid QR code"}
	ErrQRExpired          = &Error{Code: "PAYMENT_002", Kind: KindExpired, Message: "QR code has expired"}
	ErrMerchantNotFound   = &Error{Code: "PAYMENT_003", Kind: KindNotFound, Message: "merchant not found"}
	ErrInvalidPaymentCode = &Error{Code: "PAYMENT_004", Kind: KindValidation, Message: "invalid payment code"}
	ErrAmountOutOfRange   = &Error{Code: "PAYMENT_005", Kind: KindValidation, Message: "amount out of allowed range"}

	// journal errors
	ErrInvalidStateTransition = &Error{Code: "TX_001", Kind: KindInvalidState, Message: "invalid transaction state transition"}

	// generic
	ErrNotFound = &Error{Code: "COMMON_001", Kind: KindNotFound, Message: "not found"}
	ErrConflict = &Error{Code: "COMMON_002", Kind: KindConflict, Message: "already exists"}
	ErrInternal = &Error{Code: "COMMON_003", Kind: KindInternal, Message: "internal error"}
)

// IsDomain reports whether err wraps a sentinel domain error and, if so,
// returns it.
func IsDomain(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
