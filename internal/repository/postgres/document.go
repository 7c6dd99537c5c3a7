package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/repository"
)

const documentColumns = `id, url, src, description, title, user_id, created_on, updated_on`

type documentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) repository.DocumentRepository {
	return &documentRepository{db: db}
}

func scanDocument(s rowScanner) (*domain.Document, error) {
	d := &domain.Document{}
	err := s.Scan(&d.ID, &d.URL, &d.Src, &d.Description, &d.Title, &d.UserID, &d.CreatedOn, &d.UpdatedOn)
	return d, err
}

func (r *documentRepository) queryDocuments(ctx context.Context, query string, args ...any) ([]domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []domain.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (r *documentRepository) Create(ctx context.Context, d *domain.Document) error {
	query := `INSERT INTO documents (url, src, description, title, user_id, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	d.CreatedOn = now
	d.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, d.URL, d.Src, d.Description, d.Title, d.UserID, d.CreatedOn, d.UpdatedOn).Scan(&d.ID)
}

func (r *documentRepository) GetByID(ctx context.Context, id int32) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		return nil, translateError(err)
	}
	return d, nil
}

func (r *documentRepository) List(ctx context.Context) ([]domain.Document, error) {
	return r.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY created_on DESC`)
}

func (r *documentRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Document, error) {
	return r.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents WHERE user_id = $1 ORDER BY created_on DESC`, userID)
}

func (r *documentRepository) Update(ctx context.Context, d *domain.Document) error {
	query := `UPDATE documents SET url=$1, src=$2, description=$3, title=$4, updated_on=$5 WHERE id=$6`
	d.UpdatedOn = time.Now()
	res, err := r.db.ExecContext(ctx, query, d.URL, d.Src, d.Description, d.Title, d.UpdatedOn, d.ID)
	return expectAffected(res, err)
}

func (r *documentRepository) Delete(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	return expectAffected(res, err)
}
