package cli

import (
	"context"
	"os"

	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for the registration form and creates the account. A
// successful registration leaves the user logged in.
func (a *App) Register(ctx context.Context) error {
	nationalID, err := getSimpleText(a.reader, "Enter national ID (cedula)", os.Stdout)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Enter full name", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "Enter phone (optional)", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.session.Register(ctx, api.RegisterRequest{
		NationalID: nationalID,
		Name:       name,
		Email:      email,
		Phone:      phone,
		Password:   string(password),
	})
	if err != nil {
		printlnFn("Registration failed:", api.MessageOf(err))
		return err
	}

	printlnFn("Welcome,", user.Name+"!")
	return nil
}

// Login prompts for credentials and authenticates. A rejected login shows the
// server's message; there is no automatic retry.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, email, string(password))
	if err != nil {
		printlnFn("Login failed:", api.MessageOf(err))
		return err
	}

	a.parking.Refresh(ctx)

	printlnFn("Logged in as", user.Email)
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

// Profile shows the cached profile, refreshed from the server when possible.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.session.RefreshProfile(ctx)
	if err != nil {
		snap := a.session.Snapshot()
		if snap.User == nil {
			printlnFn("Not logged in")
			return err
		}
		printlnFn("Showing cached profile:", api.MessageOf(err))
		user = snap.User
	}

	printlnFn("Name:   ", user.Name)
	printlnFn("Email:  ", user.Email)
	printlnFn("Cedula: ", user.NationalID)
	printlnFn("Phone:  ", user.Phone)
	printlnFn("Address:", user.Address)
	printlnFn("Balance: $" + user.Balance.StringFixed(2))
	return nil
}

// UpdateProfile prompts for new values; empty input keeps the current one.
func (a *App) UpdateProfile(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "New name (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	phone, err := getSimpleText(a.reader, "New phone (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}
	address, err := getSimpleText(a.reader, "New address (empty to keep)", os.Stdout)
	if err != nil {
		return err
	}

	var update models.ProfileUpdate
	if name != "" {
		update.Name = &name
	}
	if phone != "" {
		update.Phone = &phone
	}
	if address != "" {
		update.Address = &address
	}

	user, err := a.session.UpdateProfile(ctx, update)
	if err != nil {
		printlnFn("Update failed:", api.MessageOf(err))
		return err
	}

	printlnFn("Profile updated for", user.Email)
	return nil
}
