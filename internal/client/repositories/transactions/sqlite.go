package transactions

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func insertOne(ctx context.Context, tx dbx.DBTX, item *models.Transaction) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (id, kind, amount, ts, description)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, item.ID, string(item.Kind), item.Amount.String(),
		item.Timestamp.UTC().Format(time.RFC3339), item.Description)
	if err != nil {
		return fmt.Errorf("insert transaction %d: %w", item.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Append(ctx context.Context, item *models.Transaction) error {
	return insertOne(ctx, r.db, item)
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Transaction) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("clear transactions: %w", err)
		}
		for i := range items {
			if err := insertOne(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kind, amount, ts, description FROM transactions ORDER BY ts DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var result []models.Transaction
	for rows.Next() {
		var (
			item   models.Transaction
			kind   string
			amount string
			ts     string
		)
		if err := rows.Scan(&item.ID, &kind, &amount, &ts, &item.Description); err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		item.Kind = models.TransactionKind(kind)
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("parse amount: %w", err)
		}
		if item.Timestamp, err = time.Parse(time.RFC3339, ts); err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return result, nil
}
