package domain

import "time"

type Category struct {
	ID          string
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CategoryWithProducts struct {
	Category
	Products []Product
}
