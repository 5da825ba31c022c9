// Package models holds the persistent domain entities. Transfer and Payment
// reference their Transaction by identity rather than extending it, so a
// money movement is always Transaction + exactly one detail record.
package models

import "time"

// KYCStatus gates account usability; only verified users can log in and
// move money.
type KYCStatus string

const (
	KYCUnverified          KYCStatus = "unverified"
	KYCPendingVerification KYCStatus = "pending_verification"
	KYCInReview            KYCStatus = "in_review"
	KYCVerified            KYCStatus = "verified"
	KYCRejected            KYCStatus = "rejected"
)

type User struct {
	ID               string
	Phone            string // E.164, +221 prefix
	FirstName        string
	LastName         string
	Email            string // optional, unique when set
	PinHash          []byte // bcrypt, nil until registration is finalized
	NationalID       string // optional, unique when set
	KYCStatus        KYCStatus
	BiometricEnabled bool
	OTPCode          string // transient, cleared after use
	OTPExpiresAt     *time.Time
	CreatedAt        time.Time
	LastLoginAt      *time.Time
}
