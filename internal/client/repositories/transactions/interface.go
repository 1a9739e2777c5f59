// Package transactions is the local read-cache for the wallet ledger. Entries
// are immutable; the cache only ever gains rows or is replaced wholesale by a
// fresh server snapshot.
package transactions

import (
	"context"

	"github.com/tuparking/tuparking/internal/client/models"
)

type Repository interface {
	// ReplaceAll swaps the cached ledger for the given server snapshot.
	ReplaceAll(ctx context.Context, items []models.Transaction) error
	// Append records a single new ledger entry.
	Append(ctx context.Context, item *models.Transaction) error
	// GetAll returns cached entries, newest first.
	GetAll(ctx context.Context) ([]models.Transaction, error)
}
