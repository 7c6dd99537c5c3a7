package utils

import (
	"fmt"
	"time"

	"rentacar-backend/internal/domain"
)

// RentalCostBreakdown provides detailed cost breakdown
type RentalCostBreakdown struct {
	Days             int   `json:"days"`
	PricePerDayCents int64 `json:"price_per_day_cents"`
	TotalCents       int64 `json:"total_cents"`
}

// ParseDate parses a yyyy-mm-dd string into a UTC calendar date.
func ParseDate(dateStr string) (time.Time, error) {
	t, err := time.Parse(domain.DateLayout, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd: %w", err)
	}
	return t, nil
}

// FormatDate is the inverse of ParseDate.
func FormatDate(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// RentalDays counts calendar days with both start and end included.
func RentalDays(start, end time.Time) (int, error) {
	r := domain.DateRange{Start: start, End: end}
	if !r.Valid() {
		return 0, fmt.Errorf("end date must be >= start date")
	}
	return r.Days(), nil
}

// CalculateRentalCost multiplies the inclusive day count by the daily price.
func CalculateRentalCost(start, end time.Time, pricePerDayCents int64) (int64, error) {
	b, err := CalculateRentalCostWithBreakdown(start, end, pricePerDayCents)
	if err != nil {
		return 0, err
	}
	return b.TotalCents, nil
}

func CalculateRentalCostWithBreakdown(start, end time.Time, pricePerDayCents int64) (RentalCostBreakdown, error) {
	if pricePerDayCents < 0 {
		return RentalCostBreakdown{}, fmt.Errorf("price per day must not be negative")
	}
	days, err := RentalDays(start, end)
	if err != nil {
		return RentalCostBreakdown{}, err
	}
	return RentalCostBreakdown{
		Days:             days,
		PricePerDayCents: pricePerDayCents,
		TotalCents:       int64(days) * pricePerDayCents,
	}, nil
}

// EstimateRentalCost prices a rental from its snapshot daily rate.
func EstimateRentalCost(r *domain.Rental) int64 {
	return int64(r.Period().Days()) * r.PricePerDayCents
}

// FormatCents renders an amount of cents as a decimal string, e.g. 4550 -> "45.50".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
