package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Profile(ctx context.Context) error
	UpdateProfile(ctx context.Context) error
	Facilities(ctx context.Context, args []string) error
	Reserve(ctx context.Context) error
	Reservations(ctx context.Context, args []string) error
	Cancel(ctx context.Context, args []string) error
	Vehicles(ctx context.Context) error
	AddVehicle(ctx context.Context) error
	DeleteVehicle(ctx context.Context, args []string) error
	Balance(ctx context.Context) error
	Recharge(ctx context.Context) error
	Transfer(ctx context.Context) error
	History(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the TuParKing CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help                   — show available commands
//	  - register               — create an account
//	  - login                  — authenticate
//	  - facilities [filter]    — list parking facilities
//	  - exit | quit            — leave the program
//
//	Logged in:
//	  - help                   — show available commands
//	  - profile                — show the profile
//	  - update                 — update profile fields
//	  - facilities [filter]    — list parking facilities
//	  - reserve                — reserve a space (interactive)
//	  - reservations [state]   — list reservations, optionally by state
//	  - cancel <id>            — cancel an active reservation
//	  - vehicles               — list vehicles
//	  - addvehicle             — register a vehicle
//	  - delvehicle <id>        — remove a vehicle
//	  - balance                — show the wallet balance
//	  - recharge               — top up the wallet
//	  - transfer               — send funds to another account
//	  - history                — list wallet transactions
//	  - logout                 — log out
//	  - exit | quit            — leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tpk> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: profile, update, facilities, reserve, reservations, cancel, vehicles, addvehicle, delvehicle, balance, recharge, transfer, history, logout, exit")
			} else {
				printlnFn("Available commands: register, login, facilities, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "update":
			_ = a.UpdateProfile(ctx)

		case "facilities":
			_ = a.Facilities(ctx, args)

		case "reserve":
			_ = a.Reserve(ctx)

		case "reservations":
			_ = a.Reservations(ctx, args)

		case "cancel":
			if len(args) == 0 {
				printlnFn("Usage: cancel <id>")
				continue
			}
			_ = a.Cancel(ctx, args)

		case "vehicles":
			_ = a.Vehicles(ctx)

		case "addvehicle":
			_ = a.AddVehicle(ctx)

		case "delvehicle":
			if len(args) == 0 {
				printlnFn("Usage: delvehicle <id>")
				continue
			}
			_ = a.DeleteVehicle(ctx, args)

		case "balance":
			_ = a.Balance(ctx)

		case "recharge":
			_ = a.Recharge(ctx)

		case "transfer":
			_ = a.Transfer(ctx)

		case "history":
			_ = a.History(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
