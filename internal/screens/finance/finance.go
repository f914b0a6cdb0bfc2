// Package finance summarises the clinic's transactions.
package finance

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/models"
)

type API interface {
	AuthToken() string
	GetFinance(ctx context.Context) ([]models.Transaction, error)
}

type Session interface {
	Expire(sentToken string)
}

// Summary totals a set of transactions. Pending is the sum of unpaid
// income; kinds other than income and expense only count towards Count.
type Summary struct {
	Count   int
	Income  float64
	Expense float64
	Balance float64
	Pending float64
}

func Summarize(txs []models.Transaction) Summary {
	s := Summary{Count: len(txs)}
	for _, tx := range txs {
		switch tx.Kind {
		case models.KindIncome:
			if tx.Paid {
				s.Income += tx.Value
			} else {
				s.Pending += tx.Value
			}
		case models.KindExpense:
			if tx.Paid {
				s.Expense += tx.Value
			}
		}
	}
	s.Balance = s.Income - s.Expense
	return s
}

type Screen struct {
	api     API
	session Session
	logger  *slog.Logger

	mu           sync.Mutex
	transactions []models.Transaction
	summary      Summary
}

func New(api API, session Session, logger *slog.Logger) *Screen {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Screen{api: api, session: session, logger: logger}
}

// Load fetches the transactions and recomputes the summary. A rejected
// token ends the session it belongs to.
func (s *Screen) Load(ctx context.Context) (Summary, error) {
	token := s.api.AuthToken()
	txs, err := s.api.GetFinance(ctx)
	if err != nil {
		if errors.Is(err, client.ErrUnauthenticated) {
			s.session.Expire(token)
		}
		s.logger.Warn("finance fetch failed", "error", err)
		return Summary{}, err
	}
	summary := Summarize(txs)

	s.mu.Lock()
	s.transactions = txs
	s.summary = summary
	s.mu.Unlock()
	return summary, nil
}

func (s *Screen) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transactions
}

func (s *Screen) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}
