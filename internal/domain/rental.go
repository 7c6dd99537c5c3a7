package domain

import "time"

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

type RentalStatus string

const (
	RentalStatusPending  RentalStatus = "pending"
	RentalStatusAccepted RentalStatus = "accepted"
	RentalStatusRejected RentalStatus = "rejected"
)

// ParseRentalStatus returns false for anything other than the three known statuses.
func ParseRentalStatus(s string) (RentalStatus, bool) {
	switch RentalStatus(s) {
	case RentalStatusPending, RentalStatusAccepted, RentalStatusRejected:
		return RentalStatus(s), true
	}
	return "", false
}

type Rental struct {
	ID      int32  `json:"id"`
	CarID   int32  `json:"car_id"`
	UserID  int32  `json:"user_id"`
	AdminID *int32 `json:"admin_id,omitempty"`
	// Snapshot of the car's daily price at booking time.
	PricePerDayCents int64      `json:"price_per_day_cents"`
	StartingDate     time.Time  `json:"starting_date"`
	DueDate          time.Time  `json:"due_date"`
	AcceptedDate     *time.Time `json:"accepted_date,omitempty"`
	Rejected         bool       `json:"rejected"`
	EndDate          *time.Time `json:"end_date,omitempty"`
	CreatedOn        time.Time  `json:"created_on"`
	UpdatedOn        time.Time  `json:"updated_on"`

	// Populated on joined reads.
	Car   *CarSummary  `json:"car,omitempty"`
	User  *UserSummary `json:"user,omitempty"`
	Admin *UserSummary `json:"admin,omitempty"`
}

// Status derives the lifecycle state from the accepted date and rejected flag.
func (r *Rental) Status() RentalStatus {
	if r.Rejected {
		return RentalStatusRejected
	}
	if r.AcceptedDate != nil {
		return RentalStatusAccepted
	}
	return RentalStatusPending
}

func (r *Rental) Period() DateRange {
	return DateRange{Start: r.StartingDate, End: r.DueDate}
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (d DateRange) Valid() bool {
	return !Truncate(d.Start).After(Truncate(d.End))
}

// Overlaps reports whether two inclusive ranges share at least one day.
func (d DateRange) Overlaps(o DateRange) bool {
	return !Truncate(d.Start).After(Truncate(o.End)) && !Truncate(d.End).Before(Truncate(o.Start))
}

// Days counts calendar days with both ends included.
func (d DateRange) Days() int {
	if !d.Valid() {
		return 0
	}
	return int(Truncate(d.End).Sub(Truncate(d.Start)).Hours()/24) + 1
}

func (d DateRange) Contains(day time.Time) bool {
	day = Truncate(day)
	return !day.Before(Truncate(d.Start)) && !day.After(Truncate(d.End))
}

// Truncate drops the time of day, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
