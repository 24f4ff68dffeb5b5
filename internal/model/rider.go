package model

import "time"

// Rider represents a rider profile in the `riders` table, paired 1:1
// with a User row.  All payment fields are optional descriptors; no
// update operation exists for riders after creation.
type Rider struct {
	ID               uint64    `json:"rider_id"`
	UserID           uint64    `json:"user_id"`
	PaymentInfo      *string   `json:"payment_info"`
	PreferredPayment *string   `json:"preferred_payment"`
	CreditCardLast4  *string   `json:"credit_card_last4"`
	DefaultLocation  *string   `json:"default_location"`
	CreatedAt        time.Time `json:"created_at"`
}
