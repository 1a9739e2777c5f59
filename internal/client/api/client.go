// Package api implements the remote resource client for the TuParKing
// backend: a thin wrapper that issues authenticated JSON requests to the
// domain endpoints and normalizes success and error shapes. It never retries;
// retry policy belongs to callers.
package api

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/models"
)

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token string
	User  models.UserProfile
}

// RegisterRequest carries the fields of the registration form.
type RegisterRequest struct {
	NationalID string `json:"cedula"`
	Email      string `json:"correo"`
	Name       string `json:"nombre"`
	Phone      string `json:"telefono"`
	Password   string `json:"contrasena"`
}

// ReservationRequest asks the backend to reserve a space.
type ReservationRequest struct {
	FacilityID int64 `json:"parqueadero_id"`
	VehicleID  int64 `json:"vehiculo_id"`
	Hours      int   `json:"duracion_horas"`
}

// RechargeResult carries the server-authoritative balance after a recharge.
type RechargeResult struct {
	NewBalance  decimal.Decimal
	Transaction *models.Transaction
}

// Client is the remote API surface consumed by the session manager and the
// orchestrator. Implementations hold the bearer token; calls that require
// auth fail with common.ErrUnauthenticated before touching the network when
// no token is set.
type Client interface {
	// SetToken installs the bearer token attached to authenticated calls
	// (used when restoring a persisted session).
	SetToken(token string)
	// ClearToken drops the bearer token.
	ClearToken()

	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResult, error)
	GetProfile(ctx context.Context) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.UserProfile, error)

	ListFacilities(ctx context.Context) ([]models.Facility, error)
	GetFacility(ctx context.Context, id int64) (*models.Facility, error)

	ListReservations(ctx context.Context, state models.ReservationState) ([]models.Reservation, error)
	CreateReservation(ctx context.Context, req ReservationRequest) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id int64) error

	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	AddVehicle(ctx context.Context, v models.Vehicle) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) error

	Recharge(ctx context.Context, amount decimal.Decimal, method string) (*RechargeResult, error)
	Transfer(ctx context.Context, recipient string, amount decimal.Decimal) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)

	Close() error
}
