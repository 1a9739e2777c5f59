package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
)

// Facilities lists parking facilities, optionally filtered by name or address.
func (a *App) Facilities(ctx context.Context, args []string) error {
	filter := strings.Join(args, " ")

	items, err := a.parking.ListFacilities(ctx, filter)
	if err != nil {
		printlnFn("Could not load facilities:", api.MessageOf(err))
		return err
	}
	if len(items) == 0 {
		printlnFn("No facilities found")
		return nil
	}

	for _, f := range items {
		printlnFn(fmt.Sprintf("[%d] %s — %s | $%s/h | %d/%d free",
			f.ID, f.Name, f.Address, f.HourlyRate.StringFixed(2), f.AvailableSpaces, f.TotalSpaces))
	}
	return nil
}

// Reserve walks through the reservation flow: pick a facility and vehicle,
// choose a duration, confirm the estimated cost, and submit.
func (a *App) Reserve(ctx context.Context) error {
	facilityID, err := promptID(a, "Facility id")
	if err != nil {
		return err
	}

	facility, err := a.parking.GetFacility(ctx, facilityID)
	if err != nil {
		printlnFn("Could not load facility:", api.MessageOf(err))
		return err
	}

	if err := a.Vehicles(ctx); err != nil {
		return err
	}
	vehicleID, err := promptID(a, "Vehicle id")
	if err != nil {
		return err
	}

	hoursText, err := getSimpleText(a.reader, "Hours", os.Stdout)
	if err != nil {
		return err
	}
	hours, err := strconv.Atoi(hoursText)
	if err != nil {
		printlnFn("Invalid number of hours:", hoursText)
		return err
	}

	estimate := a.parking.EstimateCost(facility, hours)
	confirm, err := getSimpleText(a.reader,
		fmt.Sprintf("Estimated cost: $%s. Confirm? (y/n)", estimate.StringFixed(2)), os.Stdout)
	if err != nil {
		return err
	}
	if !strings.EqualFold(confirm, "y") {
		printlnFn("Reservation aborted")
		return nil
	}

	created, err := a.parking.CreateReservation(ctx, facilityID, vehicleID, hours)
	if err != nil {
		printlnFn("Reservation failed:", api.MessageOf(err))
		return err
	}

	printlnFn(fmt.Sprintf("Reserved! id=%d, cost $%s", created.ID, created.TotalCost.StringFixed(2)))
	return nil
}

// Reservations lists reservations; an optional argument filters by state
// (activa, completada, cancelada).
func (a *App) Reservations(ctx context.Context, args []string) error {
	var state models.ReservationState
	if len(args) > 0 {
		state = models.ReservationState(args[0])
	}

	items, err := a.parking.ListReservations(ctx, state)
	if err != nil {
		printlnFn("Could not load reservations:", api.MessageOf(err))
		return err
	}
	if len(items) == 0 {
		printlnFn("No reservations")
		return nil
	}

	for _, r := range items {
		printlnFn(fmt.Sprintf("[%d] %s | %s | %dh | $%s | %s",
			r.ID, r.FacilityName, r.StartTime.Format("2006-01-02 15:04"),
			r.Hours, r.TotalCost.StringFixed(2), r.State))
	}
	return nil
}

// Cancel cancels an active reservation by id.
func (a *App) Cancel(ctx context.Context, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Invalid reservation id:", args[0])
		return err
	}

	if err := a.parking.CancelReservation(ctx, id); err != nil {
		printlnFn("Cancellation failed:", api.MessageOf(err))
		return err
	}

	printlnFn("Reservation cancelled")
	return nil
}

func (a *App) Vehicles(ctx context.Context) error {
	items, err := a.parking.ListVehicles(ctx)
	if err != nil {
		printlnFn("Could not load vehicles:", api.MessageOf(err))
		return err
	}
	if len(items) == 0 {
		printlnFn("No vehicles registered")
		return nil
	}

	for _, v := range items {
		printlnFn(fmt.Sprintf("[%d] %s %s (%s)", v.ID, v.Plate, v.Brand, v.Color))
	}
	return nil
}

func (a *App) AddVehicle(ctx context.Context) error {
	plate, err := getSimpleText(a.reader, "Plate", os.Stdout)
	if err != nil {
		return err
	}
	brand, err := getSimpleText(a.reader, "Brand", os.Stdout)
	if err != nil {
		return err
	}
	color, err := getSimpleText(a.reader, "Color", os.Stdout)
	if err != nil {
		return err
	}

	v, err := a.parking.AddVehicle(ctx, plate, brand, color)
	if err != nil {
		printlnFn("Could not add vehicle:", api.MessageOf(err))
		return err
	}

	printlnFn("Vehicle added:", v.Plate)
	return nil
}

func (a *App) DeleteVehicle(ctx context.Context, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		printlnFn("Invalid vehicle id:", args[0])
		return err
	}

	if err := a.parking.DeleteVehicle(ctx, id); err != nil {
		printlnFn("Could not delete vehicle:", api.MessageOf(err))
		return err
	}

	printlnFn("Vehicle removed")
	return nil
}

func promptID(a *App, prompt string) (int64, error) {
	text, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		printlnFn("Invalid id:", text)
		return 0, err
	}
	return id, nil
}
