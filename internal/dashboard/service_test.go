package dashboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/angelmondragon/jewelry-admin/internal/remote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRemote struct {
	customersErr error
	incomeErr    error
	salesErr     error
	popularErr   error
}

func (s stubRemote) TotalCustomers(context.Context) (int64, error) {
	if s.customersErr != nil {
		return 0, s.customersErr
	}
	return 42, nil
}

func (s stubRemote) TotalIncome(context.Context) (remote.IncomeTotal, error) {
	if s.incomeErr != nil {
		return remote.IncomeTotal{}, s.incomeErr
	}
	return remote.IncomeTotal{Amount: decimal.RequireFromString("1999.90")}, nil
}

func (s stubRemote) MonthlySales(context.Context) ([]remote.MonthlySale, error) {
	if s.salesErr != nil {
		return nil, s.salesErr
	}
	return []remote.MonthlySale{{Month: "2024-01", TotalAmount: decimal.NewFromInt(500), OrderCount: 4}}, nil
}

func (s stubRemote) MostOrdered(context.Context) ([]remote.PopularProduct, error) {
	if s.popularErr != nil {
		return nil, s.popularErr
	}
	return []remote.PopularProduct{
		{ID: "3", Title: "Pearl Ring", TotalSold: 60},
		{ID: "8", Title: "Gold Chain", TotalSold: 15},
	}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, message)
}

func TestLoadAllFigures(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, err := NewService(stubRemote{}, notifier, nil)
	require.NoError(t, err)

	summary := svc.Load(context.Background())
	assert.Equal(t, int64(42), summary.TotalCustomers)
	assert.True(t, summary.TotalIncome.Equal(decimal.RequireFromString("1999.9")))
	require.Len(t, summary.MonthlySales, 1)
	require.Len(t, summary.MostOrdered, 2)
	assert.Equal(t, "Pearl Ring", summary.MostOrdered[0].Title)
	assert.Equal(t, int64(75), summary.PopularOrders)
	assert.Empty(t, summary.Failed)
	assert.Empty(t, notifier.messages)
}

func TestLoadPartialFailure(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, err := NewService(stubRemote{incomeErr: errors.New("502")}, notifier, nil)
	require.NoError(t, err)

	summary := svc.Load(context.Background())
	assert.Equal(t, int64(42), summary.TotalCustomers)
	assert.True(t, summary.TotalIncome.IsZero())
	assert.Equal(t, []string{"totalIncome"}, summary.Failed)
	assert.Equal(t, []string{"Failed to load totalIncome"}, notifier.messages)
}

func TestLoadEverythingFails(t *testing.T) {
	boom := errors.New("offline")
	notifier := &recordingNotifier{}
	svc, _ := NewService(stubRemote{customersErr: boom, incomeErr: boom, salesErr: boom, popularErr: boom}, notifier, nil)

	summary := svc.Load(context.Background())
	assert.Zero(t, summary.TotalCustomers)
	assert.NotNil(t, summary.MonthlySales)
	assert.Empty(t, summary.MonthlySales)
	assert.NotNil(t, summary.MostOrdered)
	assert.Empty(t, summary.MostOrdered)
	assert.Zero(t, summary.PopularOrders)
	assert.Len(t, summary.Failed, 4)
	assert.Len(t, notifier.messages, 4)
}
