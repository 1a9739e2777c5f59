package models

import "strings"

// Vehicle belongs to the authenticated user. Plate is unique per user and
// stored normalized (uppercase, no surrounding whitespace).
type Vehicle struct {
	ID    int64  `json:"id"`
	Plate string `json:"placa"`
	Brand string `json:"marca,omitempty"`
	Color string `json:"color,omitempty"`
}

// NormalizePlate uppercases and trims a license plate.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}
