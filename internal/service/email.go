package service

import (
	"context"
	"fmt"
	"strings"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/utils"
)

type emailService struct {
	mailer  Mailer
	appName string
}

// NewEmailService builds notification emails and hands them to mailer,
// normally the Redis-backed queue.
func NewEmailService(mailer Mailer, appName string) EmailService {
	if appName == "" {
		appName = "Rentacar"
	}
	return &emailService{mailer: mailer, appName: appName}
}

func (s *emailService) signature() string {
	return fmt.Sprintf("\n\nBest regards,\nThe %s Team", s.appName)
}

func carName(rt *domain.Rental) string {
	if rt.Car == nil {
		return fmt.Sprintf("car #%d", rt.CarID)
	}
	return strings.TrimSpace(rt.Car.Brand + " " + rt.Car.Model)
}

func period(rt *domain.Rental) string {
	return fmt.Sprintf("%s to %s", rt.StartingDate.Format(domain.DateLayout), rt.DueDate.Format(domain.DateLayout))
}

// renterAddress returns the renter's email and first name from the joined summary.
func renterAddress(rt *domain.Rental) (string, string, error) {
	if rt.User == nil || rt.User.Email == "" {
		return "", "", fmt.Errorf("rental %d has no renter email", rt.ID)
	}
	return rt.User.Email, rt.User.FirstName, nil
}

func (s *emailService) SendRentalRequested(ctx context.Context, rt *domain.Rental, renter *domain.User, car *domain.Car) error {
	subject := fmt.Sprintf("Rental request received - %s", car.DisplayName())
	body := fmt.Sprintf("Hello %s,\n\nWe received your request to rent the %s from %s.\nEstimated cost: %s.\n\nAn administrator will review it shortly.",
		renter.FirstName, car.DisplayName(), period(rt), utils.FormatCents(utils.EstimateRentalCost(rt)))
	return s.mailer.Enqueue(ctx, renter.Email, subject, body+s.signature())
}

func (s *emailService) SendRentalAdmitted(ctx context.Context, rt *domain.Rental) error {
	to, name, err := renterAddress(rt)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Rental accepted - %s", carName(rt))
	body := fmt.Sprintf("Hello %s,\n\nYour rental of the %s from %s has been accepted.", name, carName(rt), period(rt))
	return s.mailer.Enqueue(ctx, to, subject, body+s.signature())
}

func (s *emailService) SendRentalRejected(ctx context.Context, rt *domain.Rental) error {
	to, name, err := renterAddress(rt)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Rental rejected - %s", carName(rt))
	body := fmt.Sprintf("Hello %s,\n\nUnfortunately your rental of the %s from %s has been rejected.", name, carName(rt), period(rt))
	return s.mailer.Enqueue(ctx, to, subject, body+s.signature())
}

func (s *emailService) SendDueReminder(ctx context.Context, rt *domain.Rental) error {
	to, name, err := renterAddress(rt)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Reminder: %s is due back %s", carName(rt), rt.DueDate.Format(domain.DateLayout))
	body := fmt.Sprintf("Hello %s,\n\nThis is a reminder that the %s you rented is due back on %s.", name, carName(rt), rt.DueDate.Format(domain.DateLayout))
	return s.mailer.Enqueue(ctx, to, subject, body+s.signature())
}

func (s *emailService) SendStartReminder(ctx context.Context, rt *domain.Rental) error {
	to, name, err := renterAddress(rt)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("Reminder: pick up %s on %s", carName(rt), rt.StartingDate.Format(domain.DateLayout))
	body := fmt.Sprintf("Hello %s,\n\nYour rental of the %s starts on %s.", name, carName(rt), rt.StartingDate.Format(domain.DateLayout))
	return s.mailer.Enqueue(ctx, to, subject, body+s.signature())
}

func (s *emailService) SendPasswordResetCode(ctx context.Context, email, name, code string) error {
	subject := "Your password reset code"
	body := fmt.Sprintf("Hello %s,\n\nUse the following code to reset your password:\n\n%s\n\nThe code expires in 10 minutes.", name, code)
	return s.mailer.Enqueue(ctx, email, subject, body+s.signature())
}

func (s *emailService) SendWelcome(ctx context.Context, user *domain.User) error {
	subject := fmt.Sprintf("Welcome to %s", s.appName)
	body := fmt.Sprintf("Hello %s,\n\nYour account has been created.", user.FirstName)
	return s.mailer.Enqueue(ctx, user.Email, subject, body+s.signature())
}
