package model

import (
	"time"

	"github.com/google/uuid"
)

// Service is a catalog entry. Duration and price on existing appointments
// are snapshots; editing a service never rewrites past bookings.
type Service struct {
	ID              uuid.UUID `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	Category        string    `db:"category" json:"category"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	PriceCents      int64     `db:"price_cents" json:"price_cents"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

type CreateServiceRequest struct {
	Name            string `json:"name" binding:"required"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes" binding:"required,gt=0"`
	PriceCents      int64  `json:"price_cents" binding:"required,gte=0"`
}

type UpdateServiceRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	Category        *string `json:"category"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,gt=0"`
	PriceCents      *int64  `json:"price_cents" binding:"omitempty,gte=0"`
	Active          *bool   `json:"active"`
}
