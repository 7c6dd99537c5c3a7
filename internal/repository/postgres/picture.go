package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
)

const pictureColumns = `id, src, description, title, type, date, car_id, created_on, updated_on`

type carPictureTypeRepository struct {
	db *sql.DB
}

func NewCarPictureTypeRepository(db *sql.DB) repository.CarPictureTypeRepository {
	return &carPictureTypeRepository{db: db}
}

func (r *carPictureTypeRepository) Create(ctx context.Context, t domain.CarPictureType) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO car_picture_types (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, t)
	return err
}

func (r *carPictureTypeRepository) List(ctx context.Context) ([]domain.CarPictureType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM car_picture_types ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	types := []domain.CarPictureType{}
	for rows.Next() {
		var t domain.CarPictureType
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

type pictureRepository struct {
	db *sql.DB
}

func NewPictureRepository(db *sql.DB) repository.PictureRepository {
	return &pictureRepository{db: db}
}

func scanPicture(s rowScanner) (*domain.Picture, error) {
	p := &domain.Picture{}
	err := s.Scan(&p.ID, &p.Src, &p.Description, &p.Title, &p.Type, &p.Date, &p.CarID, &p.CreatedOn, &p.UpdatedOn)
	return p, err
}

func (r *pictureRepository) queryPictures(ctx context.Context, query string, args ...any) ([]domain.Picture, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pictures := []domain.Picture{}
	for rows.Next() {
		p, err := scanPicture(rows)
		if err != nil {
			return nil, err
		}
		pictures = append(pictures, *p)
	}
	return pictures, rows.Err()
}

func (r *pictureRepository) Create(ctx context.Context, p *domain.Picture) error {
	query := `INSERT INTO pictures (src, description, title, type, date, car_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	if p.Date.IsZero() {
		p.Date = now
	}
	p.CreatedOn = now
	p.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, p.Src, p.Description, p.Title, p.Type, p.Date, p.CarID, p.CreatedOn, p.UpdatedOn).Scan(&p.ID)
}

func (r *pictureRepository) GetByID(ctx context.Context, id int32) (*domain.Picture, error) {
	p, err := scanPicture(r.db.QueryRowContext(ctx, `SELECT `+pictureColumns+` FROM pictures WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return p, nil
}

func (r *pictureRepository) List(ctx context.Context) ([]domain.Picture, error) {
	return r.queryPictures(ctx, `SELECT `+pictureColumns+` FROM pictures ORDER BY id`)
}

func (r *pictureRepository) ListByCar(ctx context.Context, carID int32, pictureType domain.CarPictureType) ([]domain.Picture, error) {
	if pictureType == "" {
		return r.queryPictures(ctx, `SELECT `+pictureColumns+` FROM pictures WHERE car_id = $1 ORDER BY id`, carID)
	}
	return r.queryPictures(ctx, `SELECT `+pictureColumns+` FROM pictures WHERE car_id = $1 AND type = $2 ORDER BY id`, carID, pictureType)
}

func (r *pictureRepository) Update(ctx context.Context, p *domain.Picture) error {
	query := `UPDATE pictures SET src=$1, description=$2, title=$3, type=$4, date=$5, car_id=$6, updated_on=$7 WHERE id=$8`
	p.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, p.Src, p.Description, p.Title, p.Type, p.Date, p.CarID, p.UpdatedOn, p.ID)
	return expectAffected(res, err)
}

func (r *pictureRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pictures WHERE id = $1`, id)
	return expectAffected(res, err)
}
