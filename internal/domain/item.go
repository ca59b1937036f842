package domain

import "time"

type ItemStatus string

const (
	ItemStatusWorking ItemStatus = "working"
	ItemStatusDamage  ItemStatus = "damage"
	ItemStatusOnRent  ItemStatus = "on rent"
	ItemStatusSoldOut ItemStatus = "sold out"
)

// Valid reports whether s is one of the four stored status literals.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusWorking, ItemStatusDamage, ItemStatusOnRent, ItemStatusSoldOut:
		return true
	}
	return false
}

// Bookable reports whether an item in this status may be offered for a new booking.
func (s ItemStatus) Bookable() bool {
	return s != ItemStatusDamage && s != ItemStatusSoldOut
}

type Item struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	CategoryID      *string    `json:"category_id,omitempty"`
	BrandID         *string    `json:"brand_id,omitempty"`
	Status          ItemStatus `json:"status"`
	PurchaseDate    time.Time  `json:"purchase_date"`
	SoldDate        *time.Time `json:"sold_date,omitempty"`
	RealPriceCents  int64      `json:"real_price_cents"`
	PaidPriceCents  int64      `json:"paid_price_cents"`
	SoldPriceCents  *int64     `json:"sold_price_cents,omitempty"`
	RentAmountCents int64      `json:"rent_amount_cents"`
	SerialNo        string     `json:"serial_no,omitempty"`
	Description     string     `json:"description,omitempty"`
	// Image references are opaque; storage lives outside this service.
	Images    []string  `json:"images"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

type Brand struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedOn time.Time `json:"created_on"`
}
