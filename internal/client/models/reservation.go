package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReservationState is the lifecycle state of a reservation. The wire values
// are the backend's Spanish state names.
type ReservationState string

const (
	ReservationActive    ReservationState = "activa"
	ReservationCompleted ReservationState = "completada"
	ReservationCancelled ReservationState = "cancelada"
)

// Terminal reports whether the state admits no further transitions.
func (s ReservationState) Terminal() bool {
	return s == ReservationCompleted || s == ReservationCancelled
}

// Reservation is a parking reservation. TotalCost is fixed at creation time
// (hourly rate times hours) and never edited afterwards; state is the only
// mutable aspect, and only via server-confirmed transitions.
type Reservation struct {
	ID              int64            `json:"id"`
	FacilityID      int64            `json:"parqueadero_id"`
	FacilityName    string           `json:"parqueadero_nombre,omitempty"`
	FacilityAddress string           `json:"parqueadero_direccion,omitempty"`
	VehicleID       int64            `json:"vehiculo_id"`
	VehiclePlate    string           `json:"vehiculo_placa,omitempty"`
	StartTime       time.Time        `json:"fecha_inicio"`
	EndTime         *time.Time       `json:"fecha_fin,omitempty"`
	Hours           int              `json:"duracion_horas"`
	TotalCost       decimal.Decimal  `json:"costo_total"`
	State           ReservationState `json:"estado"`
}
