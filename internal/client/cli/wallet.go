package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/api"
)

// Balance shows the server-authoritative balance, falling back to the cached
// value when the backend is unreachable.
func (a *App) Balance(ctx context.Context) error {
	a.wallet.RefreshBalance(ctx)

	balance, ok := a.session.Balance()
	if !ok {
		printlnFn("Not logged in")
		return nil
	}

	printlnFn("Balance: $" + balance.StringFixed(2))
	return nil
}

func (a *App) Recharge(ctx context.Context) error {
	amount, err := promptAmount(a, "Amount to recharge")
	if err != nil {
		return err
	}
	method, err := getSimpleText(a.reader, "Payment method (tarjeta/efectivo)", os.Stdout)
	if err != nil {
		return err
	}

	res, err := a.wallet.Recharge(ctx, amount, method)
	if err != nil {
		printlnFn("Recharge failed:", api.MessageOf(err))
		return err
	}

	printlnFn("Recharged. New balance: $" + res.NewBalance.StringFixed(2))
	return nil
}

func (a *App) Transfer(ctx context.Context) error {
	recipient, err := getSimpleText(a.reader, "Recipient email", os.Stdout)
	if err != nil {
		return err
	}
	amount, err := promptAmount(a, "Amount to transfer")
	if err != nil {
		return err
	}

	if err := a.wallet.Transfer(ctx, recipient, amount); err != nil {
		printlnFn("Transfer failed:", api.MessageOf(err))
		return err
	}

	printlnFn("Transfer sent to", recipient)
	return nil
}

func (a *App) History(ctx context.Context) error {
	items, err := a.wallet.ListTransactions(ctx)
	if err != nil {
		printlnFn("Could not load transactions:", api.MessageOf(err))
		return err
	}
	if len(items) == 0 {
		printlnFn("No transactions")
		return nil
	}

	for _, t := range items {
		printlnFn(fmt.Sprintf("[%d] %s | %s | $%s | %s",
			t.ID, t.Timestamp.Format("2006-01-02 15:04"), t.Kind, t.Amount.StringFixed(2), t.Description))
	}
	return nil
}

func promptAmount(a *App, prompt string) (decimal.Decimal, error) {
	text, err := getSimpleText(a.reader, prompt, os.Stdout)
	if err != nil {
		return decimal.Zero, err
	}
	amount, err := decimal.NewFromString(text)
	if err != nil {
		printlnFn("Invalid amount:", text)
		return decimal.Zero, err
	}
	return amount, nil
}
