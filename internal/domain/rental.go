package domain

import "time"

type RentalStatus string

const (
	RentalStatusActive    RentalStatus = "active"
	RentalStatusCompleted RentalStatus = "completed"
)

type Rental struct {
	ID       string   `json:"id"`
	ClientID string   `json:"client_id"`
	Client   *Client  `json:"client,omitempty"` // Populated on reads
	ItemIDs  []string `json:"item_ids"`
	Items    []Item   `json:"items,omitempty"` // Populated on reads
	Interval
	Days              int32        `json:"days"`
	RentAmountCents   int64        `json:"rent_amount_cents"`
	DiscountCents     int64        `json:"discount_cents"`
	TotalPaymentCents int64        `json:"total_payment_cents"`
	AmountPaidCents   int64        `json:"amount_paid_cents"`
	PaymentType       string       `json:"payment_type,omitempty"`
	Description       string       `json:"description,omitempty"`
	Status            RentalStatus `json:"status"`
	ReceiptNo         string       `json:"receipt_no"`
	Notes             *string      `json:"notes,omitempty"`
	CreatedOn         time.Time    `json:"created_on"`
	UpdatedOn         time.Time    `json:"updated_on"`
}

// ActiveAt reports whether the rental holds its items at t: not completed and t inside its interval.
func (r *Rental) ActiveAt(t time.Time) bool {
	return r.Status != RentalStatusCompleted && r.Contains(t)
}

type Order struct {
	ID                    string   `json:"id"`
	CustomerName          string   `json:"customer_name"`
	ItemIDs               []string `json:"item_ids"`
	Items                 []Item   `json:"items,omitempty"`
	Interval
	TargetRentAmountCents int64     `json:"target_rent_amount_cents"`
	CreatedOn             time.Time `json:"created_on"`
}
