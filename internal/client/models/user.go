// Package models defines client-side data models used by the TuParKing client.
// JSON tags follow the backend's wire names.
package models

import (
	"github.com/shopspring/decimal"
)

// UserProfile is the account record as returned by the backend. Balance is
// authoritative on the server; the client never computes it locally.
type UserProfile struct {
	ID         int64           `json:"id"`
	NationalID string          `json:"cedula"`
	Name       string          `json:"nombre"`
	Email      string          `json:"correo"`
	Phone      string          `json:"telefono"`
	Address    string          `json:"direccion"`
	Balance    decimal.Decimal `json:"saldo"`
}

// ProfileUpdate carries only the fields the user changed. Nil pointers are
// omitted from the request body, so the backend performs a partial update.
type ProfileUpdate struct {
	Name    *string `json:"nombre,omitempty"`
	Phone   *string `json:"telefono,omitempty"`
	Address *string `json:"direccion,omitempty"`
}

// Empty reports whether the update carries no fields at all.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && u.Phone == nil && u.Address == nil
}
