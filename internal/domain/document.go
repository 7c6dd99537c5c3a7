package domain

import "time"

type Document struct {
	ID          int32     `json:"id"`
	URL         string    `json:"url"`
	Src         string    `json:"src"` // object store key
	Description string    `json:"description"`
	Title       string    `json:"title"`
	UserID      int32     `json:"user_id"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}
