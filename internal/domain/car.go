package domain

import (
	"fmt"
	"time"
)

type Car struct {
	ID               int32     `json:"id"`
	Brand            string    `json:"brand"`
	Model            string    `json:"model"`
	Color            string    `json:"color"`
	Passengers       int32     `json:"passengers"`
	AC               bool      `json:"ac"`
	PricePerDayCents int64     `json:"price_per_day_cents"`
	CreatedOn        time.Time `json:"created_on"`
	UpdatedOn        time.Time `json:"updated_on"`
}

func (c *Car) DisplayName() string {
	return fmt.Sprintf("%s %s", c.Brand, c.Model)
}

func (c *Car) Summary() *CarSummary {
	return &CarSummary{ID: c.ID, Brand: c.Brand, Model: c.Model, Color: c.Color, PricePerDayCents: c.PricePerDayCents}
}

// CarSummary is the slice of a car embedded in rental reads.
type CarSummary struct {
	ID               int32  `json:"id"`
	Brand            string `json:"brand"`
	Model            string `json:"model"`
	Color            string `json:"color"`
	PricePerDayCents int64  `json:"price_per_day_cents"`
}
