// Package cli provides the interactive TuParKing command-line client.
//
// It wires configuration, the local sqlite caches, the session manager, and
// the HTTP API client into an interactive REPL. Typical flow: restore the
// persisted session, show the prompt, and execute user commands.
//
// Key features:
//   - Register / Login / Logout with a persisted session
//   - Browse facilities and reserve parking spaces
//   - Manage vehicles
//   - Wallet: balance, recharge, transfer, transaction history
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
