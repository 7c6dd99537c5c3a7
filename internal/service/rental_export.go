package service

import (
	"context"
	"fmt"
	"io"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/utils"

	"github.com/xuri/excelize/v2"
)

const rentHistorySheet = "Rent history"

var rentHistoryHeaders = []string{
	"ID", "Car", "Renter", "Renter email", "Admin", "Starting date", "Due date",
	"End date", "Status", "Price per day", "Estimated cost", "Created",
}

// ExportRentHistory writes every rental, newest first, as an xlsx workbook.
func (s *rentalService) ExportRentHistory(ctx context.Context, w io.Writer) error {
	rentals, err := s.GetAllRentHistory(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", rentHistorySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	for i, header := range rentHistoryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(rentHistorySheet, cell, header)
		f.SetCellStyle(rentHistorySheet, cell, cell, headerStyle)
	}

	for i := range rentals {
		if err := writeRentalRow(f, i+2, &rentals[i]); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write rent history workbook: %w", err)
	}
	logger.Info("Rent history exported", "rows", len(rentals))
	return nil
}

func writeRentalRow(f *excelize.File, row int, rt *domain.Rental) error {
	var car, renter, renterEmail, admin, endDate string
	if rt.Car != nil {
		car = fmt.Sprintf("%s %s", rt.Car.Brand, rt.Car.Model)
	}
	if rt.User != nil {
		renter = rt.User.FirstName + " " + rt.User.LastName
		renterEmail = rt.User.Email
	}
	if rt.Admin != nil {
		admin = rt.Admin.FirstName + " " + rt.Admin.LastName
	}
	if rt.EndDate != nil {
		endDate = rt.EndDate.Format(domain.DateLayout)
	}

	values := []any{
		rt.ID, car, renter, renterEmail, admin,
		rt.StartingDate.Format(domain.DateLayout),
		rt.DueDate.Format(domain.DateLayout),
		endDate,
		string(rt.Status()),
		utils.FormatCents(rt.PricePerDayCents),
		utils.FormatCents(utils.EstimateRentalCost(rt)),
		rt.CreatedOn.Format("2006-01-02 15:04"),
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(rentHistorySheet, cell, &values)
}
