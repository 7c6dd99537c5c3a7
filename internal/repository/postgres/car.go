package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
)

type carRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) repository.CarRepository {
	return &carRepository{db: db}
}

func (r *carRepository) Create(ctx context.Context, c *domain.Car) error {
	query := `INSERT INTO cars (brand, model, color, passengers, ac, price_per_day_cents, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	c.CreatedOn = now
	c.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, c.Brand, c.Model, c.Color, c.Passengers, c.AC, c.PricePerDayCents, c.CreatedOn, c.UpdatedOn).Scan(&c.ID)
}

func (r *carRepository) GetByID(ctx context.Context, id int32) (*domain.Car, error) {
	c := &domain.Car{}
	query := `SELECT id, brand, model, color, passengers, ac, price_per_day_cents, created_on, updated_on FROM cars WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Brand, &c.Model, &c.Color, &c.Passengers, &c.AC, &c.PricePerDayCents, &c.CreatedOn, &c.UpdatedOn)
	if err != nil {
		return nil, translateError(err)
	}
	return c, nil
}

func (r *carRepository) List(ctx context.Context) ([]domain.Car, error) {
	query := `SELECT id, brand, model, color, passengers, ac, price_per_day_cents, created_on, updated_on FROM cars ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cars := []domain.Car{}
	for rows.Next() {
		var c domain.Car
		if err := rows.Scan(&c.ID, &c.Brand, &c.Model, &c.Color, &c.Passengers, &c.AC, &c.PricePerDayCents, &c.CreatedOn, &c.UpdatedOn); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

func (r *carRepository) Update(ctx context.Context, c *domain.Car) error {
	query := `UPDATE cars SET brand=$1, model=$2, color=$3, passengers=$4, ac=$5, price_per_day_cents=$6, updated_on=$7 WHERE id=$8`
	c.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, c.Brand, c.Model, c.Color, c.Passengers, c.AC, c.PricePerDayCents, c.UpdatedOn, c.ID)
	return expectAffected(res, err)
}

func (r *carRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = $1`, id)
	return expectAffected(res, err)
}
