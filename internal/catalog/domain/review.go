package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    int32
	Comment   string
	CreatedAt time.Time
}
