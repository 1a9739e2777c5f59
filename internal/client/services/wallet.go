package services

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tuparking/tuparking/internal/client/api"
	"github.com/tuparking/tuparking/internal/client/models"
	"github.com/tuparking/tuparking/internal/client/repositories/transactions"
	"github.com/tuparking/tuparking/internal/client/session"
	"github.com/tuparking/tuparking/internal/common"
	"github.com/tuparking/tuparking/internal/logging"
)

// WalletService coordinates the balance and the transaction ledger.
type WalletService interface {
	Recharge(ctx context.Context, amount decimal.Decimal, method string) (*api.RechargeResult, error)
	Transfer(ctx context.Context, recipient string, amount decimal.Decimal) error
	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	RefreshBalance(ctx context.Context)
}

type walletService struct {
	client  api.Client
	session *session.Manager
	cache   transactions.Repository
	guard   *Sequencer
	log     logging.Logger
}

func NewWalletService(client api.Client, sess *session.Manager, cache transactions.Repository, guard *Sequencer, log logging.Logger) WalletService {
	return &walletService{client: client, session: sess, cache: cache, guard: guard, log: log}
}

// Recharge tops up the balance. The new balance is taken from the server's
// response, never computed locally.
func (s *walletService) Recharge(ctx context.Context, amount decimal.Decimal, method string) (*api.RechargeResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, common.NewValidationError("monto", "must be positive")
	}

	res, err := s.client.Recharge(ctx, amount, method)
	if err != nil {
		return nil, err
	}

	s.session.ApplyBalance(ctx, res.NewBalance)

	if res.Transaction != nil {
		if cerr := s.cache.Append(ctx, res.Transaction); cerr != nil {
			s.log.Warn(ctx, "caching recharge transaction failed", "err", cerr)
		}
	}

	return res, nil
}

// Transfer sends funds to another account. An amount exceeding the cached
// balance is rejected before any network call; the server remains the final
// authority for anything that passes the local check.
func (s *walletService) Transfer(ctx context.Context, recipient string, amount decimal.Decimal) error {
	if recipient == "" {
		return common.NewValidationError("correo_destinatario", "required")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return common.NewValidationError("monto", "must be positive")
	}

	balance, ok := s.session.Balance()
	if !ok {
		return common.ErrUnauthenticated
	}
	if amount.GreaterThan(balance) {
		return common.ErrInsufficientBalance
	}

	if err := s.client.Transfer(ctx, recipient, amount); err != nil {
		return err
	}

	s.RefreshBalance(ctx)
	return nil
}

func (s *walletService) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	seq := s.guard.Begin(resourceTransactions)

	items, err := s.client.ListTransactions(ctx)
	if err != nil {
		if api.KindOf(err) == api.KindNetwork {
			cached, cerr := s.cache.GetAll(ctx)
			if cerr == nil {
				s.log.Warn(ctx, "serving transactions from cache", "err", err)
				return cached, nil
			}
		}
		return nil, err
	}

	if s.guard.Latest(resourceTransactions, seq) {
		if cerr := s.cache.ReplaceAll(ctx, items); cerr != nil {
			s.log.Warn(ctx, "caching transactions failed", "err", cerr)
		}
	}

	return items, nil
}

// RefreshBalance re-fetches the profile and applies its balance, discarding
// the response if a newer balance request was issued in the meantime.
func (s *walletService) RefreshBalance(ctx context.Context) {
	refreshBalance(ctx, s.guard, s.client, s.session, s.log)
}
