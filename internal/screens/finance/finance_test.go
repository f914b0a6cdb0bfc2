package finance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-clinic/aura/internal/client"
	"github.com/aura-clinic/aura/internal/models"
	"github.com/aura-clinic/aura/internal/models/dto"
	"github.com/aura-clinic/aura/internal/server/servertest"
	"github.com/aura-clinic/aura/internal/session"
)

func TestSummarize(t *testing.T) {
	txs := []models.Transaction{
		{Kind: models.KindIncome, Value: 300, Paid: true},
		{Kind: models.KindIncome, Value: 150, Paid: false},
		{Kind: models.KindExpense, Value: 120, Paid: true},
		{Kind: models.KindExpense, Value: 80, Paid: false},
		{Kind: "transferencia", Value: 999, Paid: true},
	}
	got := Summarize(txs)
	assert.Equal(t, 5, got.Count)
	assert.InDelta(t, 300, got.Income, 0.001)
	assert.InDelta(t, 120, got.Expense, 0.001)
	assert.InDelta(t, 180, got.Balance, 0.001)
	assert.InDelta(t, 150, got.Pending, 0.001)

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestLoad(t *testing.T) {
	ts := servertest.New(t, nil)
	token := &session.Token{}
	api := client.New(ts.URL, token)
	router := session.NewRouter(api, nil, nil)
	t.Cleanup(router.Close)
	ctx := context.Background()

	_, err := router.Login(ctx, servertest.AdminEmail, servertest.AdminPassword)
	require.NoError(t, err)
	_, err = api.CreateTransaction(ctx, dto.CreateTransactionRequest{Description: "Consulta", Value: 250, Kind: models.KindIncome, Category: "consultas", Paid: true})
	require.NoError(t, err)
	_, err = api.CreateTransaction(ctx, dto.CreateTransactionRequest{Description: "Aluguel", Value: 100, Kind: models.KindExpense, Category: "fixo", Paid: true})
	require.NoError(t, err)

	screen := New(api, router, nil)
	summary, err := screen.Load(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 150, summary.Balance, 0.001)
	assert.Len(t, screen.Transactions(), 2)
	assert.Equal(t, summary, screen.Summary())

	api.SetBaseURL(servertest.Rotated(t).URL)
	_, err = screen.Load(ctx)
	require.ErrorIs(t, err, client.ErrUnauthenticated)
	assert.Equal(t, session.Unauthenticated, router.State())
	assert.Equal(t, summary, screen.Summary())
}
