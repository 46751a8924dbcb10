package models

import "time"

// ProcessedMessage is one row of the webhook dedup ledger. The Meta
// message id is the document _id, so a second insert for the same
// message fails and the worker drops the duplicate. ExpiresAt backs a
// TTL index; Meta stops retrying long before it fires.
type ProcessedMessage struct {
	MessageID   string    `bson:"_id" json:"message_id"`
	Phone       string    `bson:"phone" json:"phone"`
	ShopID      string    `bson:"shop_id" json:"shop_id"`
	ProcessedAt time.Time `bson:"processed_at" json:"processed_at"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expires_at"`
}
