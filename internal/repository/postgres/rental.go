package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

const rentalSelect = `SELECT r.id, r.car_id, r.user_id, r.admin_id, r.price_per_day_cents, r.starting_date, r.due_date,
	       r.accepted_date, r.rejected, r.end_date, r.created_on, r.updated_on,
	       c.brand, c.model, c.color, c.price_per_day_cents,
	       u.first_name, u.last_name, u.email,
	       a.first_name, a.last_name, a.email
	FROM rentals r
	JOIN cars c ON c.id = r.car_id
	JOIN users u ON u.id = r.user_id
	LEFT JOIN users a ON a.id = r.admin_id`

const overlapCountQuery = `SELECT COUNT(*) FROM rentals
	WHERE car_id = $1 AND NOT rejected AND starting_date <= $2 AND due_date >= $3 AND id <> $4`

type rowScanner interface {
	Scan(dest ...any) error
}

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

func scanRental(s rowScanner) (*domain.Rental, error) {
	rt := &domain.Rental{}
	car := &domain.CarSummary{}
	user := &domain.UserSummary{}
	var adminFirst, adminLast, adminEmail sql.NullString

	err := s.Scan(&rt.ID, &rt.CarID, &rt.UserID, &rt.AdminID, &rt.PricePerDayCents, &rt.StartingDate, &rt.DueDate,
		&rt.AcceptedDate, &rt.Rejected, &rt.EndDate, &rt.CreatedOn, &rt.UpdatedOn,
		&car.Brand, &car.Model, &car.Color, &car.PricePerDayCents,
		&user.FirstName, &user.LastName, &user.Email,
		&adminFirst, &adminLast, &adminEmail)
	if err != nil {
		return nil, err
	}

	car.ID = rt.CarID
	user.ID = rt.UserID
	rt.Car = car
	rt.User = user
	if rt.AdminID != nil {
		rt.Admin = &domain.UserSummary{
			ID:        *rt.AdminID,
			FirstName: adminFirst.String,
			LastName:  adminLast.String,
			Email:     adminEmail.String,
		}
	}
	return rt, nil
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...any) ([]domain.Rental, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rentals := []domain.Rental{}
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}

// withCarLock runs fn in a transaction holding a row lock on the car, so
// concurrent bookings of the same car serialize on the overlap check.
func (r *rentalRepository) withCarLock(ctx context.Context, carID int32, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked int32
	if err := tx.QueryRowContext(ctx, `SELECT id FROM cars WHERE id = $1 FOR UPDATE`, carID).Scan(&locked); err != nil {
		return translateError(err)
	}

	if err := fn(tx); err != nil {
		return translateError(err)
	}
	return translateError(tx.Commit())
}

func checkOverlap(ctx context.Context, tx *sql.Tx, rt *domain.Rental) error {
	var count int64
	if err := tx.QueryRowContext(ctx, overlapCountQuery, rt.CarID, rt.DueDate, rt.StartingDate, rt.ID).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return repository.ErrRentalOverlap
	}
	return nil
}

func (r *rentalRepository) Create(ctx context.Context, rt *domain.Rental) error {
	logger.DatabaseCall("INSERT", "rentals", "car_id", rt.CarID, "user_id", rt.UserID)
	err := r.withCarLock(ctx, rt.CarID, func(tx *sql.Tx) error {
		if err := checkOverlap(ctx, tx, rt); err != nil {
			return err
		}
		now := time.Now()
		rt.CreatedOn = now
		rt.UpdatedOn = now
		query := `INSERT INTO rentals (car_id, user_id, admin_id, price_per_day_cents, starting_date, due_date, accepted_date, rejected, end_date, created_on, updated_on)
		          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
		return tx.QueryRowContext(ctx, query, rt.CarID, rt.UserID, rt.AdminID, rt.PricePerDayCents, rt.StartingDate, rt.DueDate,
			rt.AcceptedDate, rt.Rejected, rt.EndDate, rt.CreatedOn, rt.UpdatedOn).Scan(&rt.ID)
	})
	logger.DatabaseResult("INSERT", 1, err, "rental_id", rt.ID)
	return err
}

func (r *rentalRepository) Update(ctx context.Context, rt *domain.Rental) error {
	logger.DatabaseCall("UPDATE", "rentals", "rental_id", rt.ID)
	err := r.withCarLock(ctx, rt.CarID, func(tx *sql.Tx) error {
		if !rt.Rejected {
			if err := checkOverlap(ctx, tx, rt); err != nil {
				return err
			}
		}
		rt.UpdatedOn = time.Now()
		query := `UPDATE rentals SET car_id=$1, user_id=$2, admin_id=$3, price_per_day_cents=$4, starting_date=$5, due_date=$6, end_date=$7, updated_on=$8 WHERE id=$9`
		res, err := tx.ExecContext(ctx, query, rt.CarID, rt.UserID, rt.AdminID, rt.PricePerDayCents, rt.StartingDate, rt.DueDate, rt.EndDate, rt.UpdatedOn, rt.ID)
		return expectAffected(res, err)
	})
	logger.DatabaseResult("UPDATE", 1, err, "rental_id", rt.ID)
	return err
}

// UpdateStatus leaves rejected rentals untouched and reports them as ErrNotFound.
func (r *rentalRepository) UpdateStatus(ctx context.Context, rt *domain.Rental) error {
	rt.UpdatedOn = time.Now()
	query := `UPDATE rentals SET accepted_date=$1, rejected=$2, admin_id=$3, updated_on=$4 WHERE id=$5 AND NOT rejected`
	res, err := r.db.ExecContext(ctx, query, rt.AcceptedDate, rt.Rejected, rt.AdminID, rt.UpdatedOn, rt.ID)
	return expectAffected(res, err)
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, rentalSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return rt, nil
}

func (r *rentalRepository) GetNonRejected(ctx context.Context, id int32) (*domain.Rental, error) {
	rt, err := scanRental(r.db.QueryRowContext(ctx, rentalSelect+` WHERE r.id = $1 AND r.rejected = false`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return rt, nil
}

func (r *rentalRepository) FindOverlapping(ctx context.Context, carID int32, start, end time.Time, excludeID int32) ([]domain.Rental, error) {
	query := rentalSelect + ` WHERE r.car_id = $1 AND NOT r.rejected AND r.starting_date <= $2 AND r.due_date >= $3 AND r.id <> $4`
	return r.queryRentals(ctx, query, carID, end, start, excludeID)
}

func (r *rentalRepository) List(ctx context.Context, f repository.RentalFilter) ([]domain.Rental, error) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.UserID != nil {
		add("r.user_id = $%d", *f.UserID)
	}
	if f.CarID != nil {
		add("r.car_id = $%d", *f.CarID)
	}
	switch f.Status {
	case domain.RentalStatusPending:
		conds = append(conds, "r.accepted_date IS NULL AND NOT r.rejected")
	case domain.RentalStatusAccepted:
		conds = append(conds, "r.accepted_date IS NOT NULL AND NOT r.rejected")
	case domain.RentalStatusRejected:
		conds = append(conds, "r.rejected")
	}
	if f.ActiveOn != nil {
		add("r.starting_date <= $%d", *f.ActiveOn)
		add("r.due_date >= $%d", *f.ActiveOn)
	}
	if f.DueBefore != nil {
		add("r.due_date < $%d", *f.DueBefore)
	}
	if f.StartsAfter != nil {
		add("r.starting_date > $%d", *f.StartsAfter)
	}
	if f.DueOn != nil {
		add("r.due_date = $%d", *f.DueOn)
	}
	if f.StartsOn != nil {
		add("r.starting_date = $%d", *f.StartsOn)
	}
	if f.NotReturned {
		conds = append(conds, "r.end_date IS NULL")
	}

	query := rentalSelect
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY r.created_on DESC"

	logger.DatabaseCall("SELECT", "rentals", "conditions", len(conds))
	rentals, err := r.queryRentals(ctx, query, args...)
	logger.DatabaseResult("SELECT", int64(len(rentals)), err)
	return rentals, err
}

func (r *rentalRepository) ListUnavailableDates(ctx context.Context, carID int32) ([]domain.DateRange, error) {
	query := `SELECT starting_date, due_date FROM rentals
	          WHERE car_id = $1 AND accepted_date IS NOT NULL AND NOT rejected
	          ORDER BY starting_date`
	rows, err := r.db.QueryContext(ctx, query, carID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranges := []domain.DateRange{}
	for rows.Next() {
		var dr domain.DateRange
		if err := rows.Scan(&dr.Start, &dr.End); err != nil {
			return nil, err
		}
		ranges = append(ranges, dr)
	}
	return ranges, rows.Err()
}

func (r *rentalRepository) Delete(ctx context.Context, id int32) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rentals WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
