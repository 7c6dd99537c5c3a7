package jobs

import (
	"context"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
)

const jobTimeout = 5 * time.Minute

func (jr *JobRunner) tomorrow() time.Time {
	return domain.Truncate(jr.now()).AddDate(0, 0, 1)
}

// SendDueReminders emails renters whose accepted rental is due back tomorrow
// and has not been returned yet.
func (jr *JobRunner) SendDueReminders() {
	jr.runWithRecovery("SendDueReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		day := jr.tomorrow()
		rentals, err := jr.services.Rental.FindDueOn(ctx, day)
		if err != nil {
			logger.Error("Failed to query rentals due tomorrow", "day", day.Format(domain.DateLayout), "error", err)
			return
		}

		sent := jr.notifyEach(rentals, func(rt *domain.Rental) error {
			return jr.services.Email.SendDueReminder(ctx, rt)
		})
		logger.Info("Due reminders processed", "day", day.Format(domain.DateLayout), "found", len(rentals), "sent", sent)
	})
}

// SendStartReminders emails renters whose accepted rental starts tomorrow.
func (jr *JobRunner) SendStartReminders() {
	jr.runWithRecovery("SendStartReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		day := jr.tomorrow()
		rentals, err := jr.services.Rental.FindStartingOn(ctx, day)
		if err != nil {
			logger.Error("Failed to query rentals starting tomorrow", "day", day.Format(domain.DateLayout), "error", err)
			return
		}

		sent := jr.notifyEach(rentals, func(rt *domain.Rental) error {
			return jr.services.Email.SendStartReminder(ctx, rt)
		})
		logger.Info("Start reminders processed", "day", day.Format(domain.DateLayout), "found", len(rentals), "sent", sent)
	})
}

func (jr *JobRunner) notifyEach(rentals []domain.Rental, send func(*domain.Rental) error) int {
	sent := 0
	for i := range rentals {
		rt := &rentals[i]
		if err := send(rt); err != nil {
			logger.Warn("Failed to send reminder", "rental_id", rt.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}
