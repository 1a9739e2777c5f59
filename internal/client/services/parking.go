// Package services contains the reservation and balance orchestrators: they
// enforce client-side preconditions, delegate to the remote client, and
// reconcile cached state with server responses. Balance is never computed
// locally; after any operation that changes it, the server's value is
// re-fetched through the session manager.
package services

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/client/repositories/reservations"
	"github.com/tuparking/tuparking/internal/client/session"
	"github.com/tuparking/tuparking/internal/common"
	"github.com/tuparking/tuparking/internal/logging"
)

// ParkingService coordinates facilities, vehicles, and the reservation
// lifecycle.
type ParkingService interface {
	ListFacilities(ctx context.Context, filter string) ([]models.Facility, error)
	GetFacility(ctx context.Context, id int64) (*models.Facility, error)
	EstimateCost(facility *models.Facility, hours int) decimal.Decimal
	CreateReservation(ctx context.Context, facilityID, vehicleID int64, hours int) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id int64) error
	ListReservations(ctx context.Context, state models.ReservationState) ([]models.Reservation, error)
	ListVehicles(ctx context.Context) ([]models.Vehicle, error)
	AddVehicle(ctx context.Context, plate, brand, color string) (*models.Vehicle, error)
	DeleteVehicle(ctx context.Context, id int64) error
	Refresh(ctx context.Context)
}

type parkingService struct {
	client  api.Client
	session *session.Manager
	cache   reservations.Repository
	guard   *Sequencer
	log     logging.Logger

	mu         sync.RWMutex
	facilities []models.Facility
}

func NewParkingService(client api.Client, sess *session.Manager, cache reservations.Repository, guard *Sequencer, log logging.Logger) ParkingService {
	return &parkingService{client: client, session: sess, cache: cache, guard: guard, log: log}
}

// refreshBalance reconciles the cached balance with the server after an
// operation that changed it. A failed refresh is logged, not surfaced: the
// triggering operation already succeeded.
func refreshBalance(ctx context.Context, g *Sequencer, c api.Client, m *session.Manager, log logging.Logger) {
	seq := g.Begin(resourceBalance)

	user, err := c.GetProfile(ctx)
	if err != nil {
		log.Warn(ctx, "balance refresh failed", "err", err)
		return
	}
	if !g.Latest(resourceBalance, seq) {
		return
	}
	m.ApplyBalance(ctx, user.Balance)
}

func (s *parkingService) ListFacilities(ctx context.Context, filter string) ([]models.Facility, error) {
	seq := s.guard.Begin(resourceFacilities)

	items, err := s.client.ListFacilities(ctx)
	if err != nil {
		if api.KindOf(err) == api.KindNetwork {
			s.mu.RLock()
			cached := s.facilities
			s.mu.RUnlock()
			if cached != nil {
				s.log.Warn(ctx, "serving facilities from cache", "err", err)
				return filterFacilities(cached, filter), nil
			}
		}
		return nil, err
	}

	if s.guard.Latest(resourceFacilities, seq) {
		s.mu.Lock()
		s.facilities = items
		s.mu.Unlock()
	}

	return filterFacilities(items, filter), nil
}

// filterFacilities keeps facilities whose name or address contains filter,
// case-insensitively. An empty filter keeps everything.
func filterFacilities(items []models.Facility, filter string) []models.Facility {
	if filter == "" {
		return items
	}

	needle := strings.ToLower(filter)
	result := make([]models.Facility, 0, len(items))
	for _, f := range items {
		if strings.Contains(strings.ToLower(f.Name), needle) ||
			strings.Contains(strings.ToLower(f.Address), needle) {
			result = append(result, f)
		}
	}
	return result
}

func (s *parkingService) GetFacility(ctx context.Context, id int64) (*models.Facility, error) {
	return s.client.GetFacility(ctx, id)
}

// EstimateCost is a display-only preview: hourly rate times hours. The
// confirmed cost always comes back from the server in the reservation.
func (s *parkingService) EstimateCost(facility *models.Facility, hours int) decimal.Decimal {
	if facility == nil || hours < 1 {
		return decimal.Zero
	}
	return facility.HourlyRate.Mul(decimal.NewFromInt(int64(hours)))
}

func (s *parkingService) CreateReservation(ctx context.Context, facilityID, vehicleID int64, hours int) (*models.Reservation, error) {
	if hours < 1 {
		return nil, common.NewValidationError("duracion_horas", "must be at least 1")
	}

	vehicles, err := s.client.ListVehicles(ctx)
	if err != nil {
		return nil, err
	}
	if !ownsVehicle(vehicles, vehicleID) {
		return nil, common.ErrVehicleUnknown
	}

	created, err := s.client.CreateReservation(ctx, api.ReservationRequest{
		FacilityID: facilityID,
		VehicleID:  vehicleID,
		Hours:      hours,
	})
	if err != nil {
		// no local state is touched on rejection
		return nil, err
	}

	if cerr := s.cache.Upsert(ctx, created); cerr != nil {
		s.log.Warn(ctx, "caching reservation failed", "err", cerr)
	}

	// the charge happened server-side; pick up the authoritative balance
	refreshBalance(ctx, s.guard, s.client, s.session, s.log)

	return created, nil
}

func ownsVehicle(vehicles []models.Vehicle, id int64) bool {
	for _, v := range vehicles {
		if v.ID == id {
			return true
		}
	}
	return false
}

func (s *parkingService) CancelReservation(ctx context.Context, id int64) error {
	cached, err := s.cache.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if cached == nil || cached.State != models.ReservationActive {
		return common.ErrNotCancellable
	}

	if err := s.client.CancelReservation(ctx, id); err != nil {
		return err
	}

	if cerr := s.cache.SetState(ctx, id, models.ReservationCancelled); cerr != nil {
		s.log.Warn(ctx, "recording cancellation failed", "err", cerr)
	}

	// cancellation may have triggered a refund
	refreshBalance(ctx, s.guard, s.client, s.session, s.log)

	return nil
}

func (s *parkingService) ListReservations(ctx context.Context, state models.ReservationState) ([]models.Reservation, error) {
	seq := s.guard.Begin(resourceReservations)

	items, err := s.client.ListReservations(ctx, state)
	if err != nil {
		if api.KindOf(err) == api.KindNetwork {
			cached, cerr := s.cache.GetAll(ctx)
			if cerr == nil {
				s.log.Warn(ctx, "serving reservations from cache", "err", err)
				return filterReservations(cached, state), nil
			}
		}
		return nil, err
	}

	if s.guard.Latest(resourceReservations, seq) {
		var cerr error
		if state == "" {
			cerr = s.cache.ReplaceAll(ctx, items)
		} else {
			for i := range items {
				if cerr = s.cache.Upsert(ctx, &items[i]); cerr != nil {
					break
				}
			}
		}
		if cerr != nil {
			s.log.Warn(ctx, "caching reservations failed", "err", cerr)
		}
	}

	return items, nil
}

func filterReservations(items []models.Reservation, state models.ReservationState) []models.Reservation {
	if state == "" {
		return items
	}
	result := make([]models.Reservation, 0, len(items))
	for _, r := range items {
		if r.State == state {
			result = append(result, r)
		}
	}
	return result
}

func (s *parkingService) ListVehicles(ctx context.Context) ([]models.Vehicle, error) {
	return s.client.ListVehicles(ctx)
}

func (s *parkingService) AddVehicle(ctx context.Context, plate, brand, color string) (*models.Vehicle, error) {
	plate = models.NormalizePlate(plate)
	if plate == "" {
		return nil, common.NewValidationError("placa", "required")
	}

	return s.client.AddVehicle(ctx, models.Vehicle{Plate: plate, Brand: brand, Color: color})
}

func (s *parkingService) DeleteVehicle(ctx context.Context, id int64) error {
	return s.client.DeleteVehicle(ctx, id)
}

// Refresh re-fetches the facility and reservation lists, e.g. after a fresh
// login or when the client becomes active again. Each fetch goes through the
// stale-response guard, so an older in-flight request can never clobber the
// results.
func (s *parkingService) Refresh(ctx context.Context) {
	if _, err := s.ListFacilities(ctx, ""); err != nil {
		s.log.Warn(ctx, "facility refresh failed", "err", err)
	}
	if _, err := s.ListReservations(ctx, ""); err != nil {
		s.log.Warn(ctx, "reservation refresh failed", "err", err)
	}
	if _, err := s.client.ListVehicles(ctx); err != nil {
		s.log.Warn(ctx, "vehicle refresh failed", "err", err)
	}
}
