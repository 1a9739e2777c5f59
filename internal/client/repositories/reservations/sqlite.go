package reservations

import (
	"context"
	"database/sql"
	"errors"
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

func upsertOne(ctx context.Context, tx dbx.DBTX, r *models.Reservation) error {
	var endTime any
	if r.EndTime != nil {
		endTime = r.EndTime.UTC().Format(time.RFC3339)
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO reservations
			(id, facility_id, facility_name, facility_address, vehicle_id, vehicle_plate,
			 start_time, end_time, hours, total_cost, state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			facility_name = excluded.facility_name,
			facility_address = excluded.facility_address,
			vehicle_plate = excluded.vehicle_plate,
			end_time = excluded.end_time,
			state = excluded.state
	`, r.ID, r.FacilityID, r.FacilityName, r.FacilityAddress, r.VehicleID, r.VehiclePlate,
		r.StartTime.UTC().Format(time.RFC3339), endTime, r.Hours, r.TotalCost.String(), string(r.State))
	if err != nil {
		return fmt.Errorf("upsert reservation %d: %w", r.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, item *models.Reservation) error {
	return upsertOne(ctx, r.db, item)
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, items []models.Reservation) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM reservations`); err != nil {
			return fmt.Errorf("clear reservations: %w", err)
		}
		for i := range items {
			if err := upsertOne(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SQLiteRepository) SetState(ctx context.Context, id int64, state models.ReservationState) error {
	_, err := r.db.ExecContext(ctx, `UPDATE reservations SET state = ? WHERE id = ?`, string(state), id)
	if err != nil {
		return fmt.Errorf("set reservation %d state: %w", id, err)
	}
	return nil
}

func scanReservation(scan func(dest ...any) error) (*models.Reservation, error) {
	var (
		item      models.Reservation
		startTime string
		endTime   sql.NullString
		totalCost string
		state     string
	)
	err := scan(&item.ID, &item.FacilityID, &item.FacilityName, &item.FacilityAddress,
		&item.VehicleID, &item.VehiclePlate, &startTime, &endTime, &item.Hours, &totalCost, &state)
	if err != nil {
		return nil, err
	}

	if item.StartTime, err = time.Parse(time.RFC3339, startTime); err != nil {
		return nil, fmt.Errorf("parse start_time: %w", err)
	}
	if endTime.Valid {
		parsed, err := time.Parse(time.RFC3339, endTime.String)
		if err != nil {
			return nil, fmt.Errorf("parse end_time: %w", err)
		}
		item.EndTime = &parsed
	}
	if item.TotalCost, err = decimal.NewFromString(totalCost); err != nil {
		return nil, fmt.Errorf("parse total_cost: %w", err)
	}
	item.State = models.ReservationState(state)
	return &item, nil
}

const selectColumns = `id, facility_id, facility_name, facility_address, vehicle_id, vehicle_plate,
	start_time, end_time, hours, total_cost, state`

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Reservation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM reservations WHERE id = ?`, id)

	item, err := scanReservation(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reservation %d: %w", id, err)
	}
	return item, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM reservations ORDER BY start_time DESC`)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var result []models.Reservation
	for rows.Next() {
		item, err := scanReservation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan reservation row: %w", err)
		}
		result = append(result, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reservation rows: %w", err)
	}
	return result, nil
}
