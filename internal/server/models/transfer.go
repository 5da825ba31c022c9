package models

import "time"

// Transfer is the peer-to-peer detail of a Transaction. The recipient is
// phone-identified and may or may not map to an internal user at creation
// time; resolution happens in the transfer engine.
type Transfer struct {
	ID             string
	TransactionID  string
	SenderUserID   string
	RecipientPhone string
	RecipientName  string
	Note           string
	Status         TransactionStatus
	ExpiresAt      time.Time // end of the pending window
	CreatedAt      time.Time
}
