package utils

import (
	"fmt"
	"math"
	"time"

	"rentdesk-backend/internal/domain"
)

// ReceiptPrefix prefixes every rental receipt number.
const ReceiptPrefix = "RNT-"

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	Days          int32
	GrossCents    int64
	DiscountCents int64
	TotalCents    int64
}

// RentalDays counts started 24-hour periods in the interval, minimum 1.
// A rental from 10:00 on the 1st to 10:00 on the 3rd is 2 days; 10:00 to 10:01 is 1 day.
func RentalDays(iv domain.Interval) int32 {
	hours := iv.Duration().Hours()
	days := int32(math.Ceil(hours / 24))
	if days < 1 {
		days = 1
	}
	return days
}

// CalculateRentalCost applies the per-day rate to the interval and subtracts the discount.
// The total never goes below zero.
func CalculateRentalCost(iv domain.Interval, rentAmountCents, discountCents int64) (RentalCostBreakdown, error) {
	if err := iv.Validate(); err != nil {
		return RentalCostBreakdown{}, err
	}
	if rentAmountCents < 0 {
		return RentalCostBreakdown{}, fmt.Errorf("rent amount must be >= 0, got %d", rentAmountCents)
	}
	if discountCents < 0 {
		return RentalCostBreakdown{}, fmt.Errorf("discount must be >= 0, got %d", discountCents)
	}

	days := RentalDays(iv)
	gross := int64(days) * rentAmountCents
	total := gross - discountCents
	if total < 0 {
		total = 0
	}

	return RentalCostBreakdown{
		Days:          days,
		GrossCents:    gross,
		DiscountCents: discountCents,
		TotalCents:    total,
	}, nil
}

// ReceiptNumber formats t as RNT-YYYYMMDD-HHMMSS in t's own location.
// Two commits within the same second produce the same number.
func ReceiptNumber(t time.Time) string {
	return ReceiptPrefix + t.Format("20060102-150405")
}
