package http

import (
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/utils"
)

type rentalResponse struct {
	ID                int32               `json:"id"`
	CarID             int32               `json:"car_id"`
	UserID            int32               `json:"user_id"`
	AdminID           *int32              `json:"admin_id,omitempty"`
	PricePerDayCents  int64               `json:"price_per_day_cents"`
	StartingDate      string              `json:"starting_date"`
	DueDate           string              `json:"due_date"`
	AcceptedDate      *time.Time          `json:"accepted_date,omitempty"`
	Rejected          bool                `json:"rejected"`
	EndDate           string              `json:"end_date,omitempty"`
	Status            domain.RentalStatus `json:"status"`
	EstimatedCostCent int64               `json:"estimated_cost_cents"`
	CreatedOn         time.Time           `json:"created_on"`
	UpdatedOn         time.Time           `json:"updated_on"`
	Car               *domain.CarSummary  `json:"car,omitempty"`
	User              *domain.UserSummary `json:"user,omitempty"`
	Admin             *domain.UserSummary `json:"admin,omitempty"`
}

func mapRental(rt *domain.Rental) rentalResponse {
	resp := rentalResponse{
		ID:                rt.ID,
		CarID:             rt.CarID,
		UserID:            rt.UserID,
		AdminID:           rt.AdminID,
		PricePerDayCents:  rt.PricePerDayCents,
		StartingDate:      utils.FormatDate(rt.StartingDate),
		DueDate:           utils.FormatDate(rt.DueDate),
		AcceptedDate:      rt.AcceptedDate,
		Rejected:          rt.Rejected,
		Status:            rt.Status(),
		EstimatedCostCent: utils.EstimateRentalCost(rt),
		CreatedOn:         rt.CreatedOn,
		UpdatedOn:         rt.UpdatedOn,
		Car:               rt.Car,
		User:              rt.User,
		Admin:             rt.Admin,
	}
	if rt.EndDate != nil {
		resp.EndDate = utils.FormatDate(*rt.EndDate)
	}
	return resp
}

func mapRentals(rentals []domain.Rental) []rentalResponse {
	out := make([]rentalResponse, 0, len(rentals))
	for i := range rentals {
		out = append(out, mapRental(&rentals[i]))
	}
	return out
}

type dateRangeResponse struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func mapDateRanges(ranges []domain.DateRange) []dateRangeResponse {
	out := make([]dateRangeResponse, 0, len(ranges))
	for _, r := range ranges {
		out = append(out, dateRangeResponse{Start: utils.FormatDate(r.Start), End: utils.FormatDate(r.End)})
	}
	return out
}

type userResponse struct {
	ID        int32           `json:"id"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	Dob       string          `json:"dob,omitempty"`
	Email     string          `json:"email"`
	Address   string          `json:"address"`
	Country   string          `json:"country"`
	Role      domain.RoleName `json:"role,omitempty"`
	CreatedOn time.Time       `json:"created_on"`
	UpdatedOn time.Time       `json:"updated_on"`
}

func mapUser(u *domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Address:   u.Address,
		Country:   u.Country,
		CreatedOn: u.CreatedOn,
		UpdatedOn: u.UpdatedOn,
	}
	if !u.Dob.IsZero() {
		resp.Dob = utils.FormatDate(u.Dob)
	}
	if u.Role != nil {
		resp.Role = u.Role.Name
	}
	return resp
}

func mapUsers(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, mapUser(&users[i]))
	}
	return out
}

// parseOptionalDate parses a YYYY-MM-DD string, returning nil for "".
func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
