package models

import "github.com/shopspring/decimal"

// Facility is a parking lot listed by the backend.
type Facility struct {
	ID              int64           `json:"id"`
	Name            string          `json:"nombre"`
	Address         string          `json:"direccion"`
	HourlyRate      decimal.Decimal `json:"tarifa_hora"`
	TotalSpaces     int             `json:"espacios_totales"`
	AvailableSpaces int             `json:"espacios_disponibles"`
}
