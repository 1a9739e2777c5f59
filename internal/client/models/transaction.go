package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind classifies a ledger entry.
type TransactionKind string

const (
	TransactionRecharge          TransactionKind = "recarga"
	TransactionReservationCharge TransactionKind = "cargo_reserva"
	TransactionRefund            TransactionKind = "reembolso"
	TransactionTransfer          TransactionKind = "transferencia"
)

// Transaction is an immutable ledger entry. Amount is signed by kind:
// recharges and refunds are positive, charges and outgoing transfers negative.
// The client never mutates or deletes entries.
type Transaction struct {
	ID          int64           `json:"id"`
	Kind        TransactionKind `json:"tipo"`
	Amount      decimal.Decimal `json:"monto"`
	Timestamp   time.Time       `json:"fecha"`
	Description string          `json:"descripcion,omitempty"`
}
