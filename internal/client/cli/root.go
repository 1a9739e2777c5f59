package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/tuparking/tuparking/internal/client/session"
)

func (a *App) getStatus() string {
	snap := a.session.Snapshot()
	switch snap.Status {
	case session.StatusAuthenticated:
		if snap.User != nil {
			return fmt.Sprintf("(%s $%s)", snap.User.Email, snap.User.Balance.StringFixed(2))
		}
		return "(authenticated)"
	case session.StatusRestoring:
		return "(restoring)"
	default:
		return ""
	}
}

// Root restores the persisted session and runs the REPL until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Println("Welcome to TuParKing CLI (type 'help' for commands)")

	a.session.Restore(ctx)
	if a.isLoggedIn() {
		fmt.Println("Session restored:", a.session.Snapshot().User.Email)
		a.parking.Refresh(ctx)
	}

	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)
}
