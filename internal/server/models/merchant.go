package models

import "time"

type Merchant struct {
	ID        string
	Code      string // short public identifier embedded in QR payloads
	Name      string
	Phone     string
	Active    bool
	CreatedAt time.Time
}
