// Package reservations is the local read-cache for the user's reservations,
// refreshed from every successful server response and consulted when the
// backend is unreachable.
package reservations

import (
	"context"

	"github.com/tuparking/tuparking/internal/client/models"
)

type Repository interface {
	// ReplaceAll swaps the cached set for the given server snapshot.
	ReplaceAll(ctx context.Context, items []models.Reservation) error
	// Upsert inserts or updates a single reservation.
	Upsert(ctx context.Context, r *models.Reservation) error
	// SetState records a confirmed state transition.
	SetState(ctx context.Context, id int64, state models.ReservationState) error
	// GetByID returns the cached reservation, or nil when it is not cached.
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	// GetAll returns cached reservations, most recent start time first.
	GetAll(ctx context.Context) ([]models.Reservation, error)
}
