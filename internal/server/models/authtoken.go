package models

import "time"

// AuthToken is an opaque access/refresh token pair. Both values share one
// expiry; refreshing replaces the whole row atomically.
type AuthToken struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}
