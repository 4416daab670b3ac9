package limits

import (
	"context"
	"errors"
	"testing"
	"time"

	domainerrors "simex/internal/errors"
	"simex/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	deposits []models.CashDeposit
	locks    int
}

func (m *memStore) LockUserDeposits(userID uint) error {
	m.locks++
	return nil
}

func (m *memStore) SumDepositsSince(userID uint, since time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, d := range m.deposits {
		if d.UserID == userID && !d.CreatedAt.Before(since) {
			total = total.Add(d.AmountUSD.Decimal)
		}
	}
	return total, nil
}

func (m *memStore) CreateCashDeposit(d *models.CashDeposit) error {
	m.deposits = append(m.deposits, *d)
	return nil
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LockUserDeposits(userID uint) error {
	return m.Called(userID).Error(0)
}

func (m *MockStore) SumDepositsSince(userID uint, since time.Time) (decimal.Decimal, error) {
	args := m.Called(userID, since)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStore) CreateCashDeposit(d *models.CashDeposit) error {
	return m.Called(d).Error(0)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestEnforcer_ThreeDepositsAgainstLimit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewEnforcer(Config{Limit: decimal.NewFromInt(1000)}, nil).WithClock(fixedClock(now))
	store := &memStore{}
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := e.CheckAndReserve(ctx, store, 1, 1, decimal.NewFromInt(500))
		require.NoError(t, err)
		assert.Equal(t, now, d.CreatedAt)
	}

	_, err := e.CheckAndReserve(ctx, store, 1, 1, decimal.NewFromInt(500))
	assert.ErrorIs(t, err, domainerrors.ErrDepositLimitExceeded)
	assert.Len(t, store.deposits, 2)
	assert.Equal(t, 3, store.locks)

	// Other users have their own window.
	_, err = e.CheckAndReserve(ctx, store, 2, 1, decimal.NewFromInt(1000))
	assert.NoError(t, err)
}

func TestEnforcer_WindowEdges(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	limit := decimal.NewFromInt(100)

	tests := []struct {
		name    string
		prior   time.Time
		wantErr bool
	}{
		{"prior deposit inside window", now.Add(-time.Hour), true},
		{"prior deposit exactly at window start", now.Add(-24 * time.Hour), true},
		{"prior deposit just outside window", now.Add(-24*time.Hour - time.Second), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{deposits: []models.CashDeposit{
				{UserID: 1, AmountUSD: models.NewAmount(decimal.NewFromInt(60)), CreatedAt: tt.prior},
			}}
			e := NewEnforcer(Config{Limit: limit, Window: 24 * time.Hour}, nil).WithClock(fixedClock(now))

			_, err := e.CheckAndReserve(context.Background(), store, 1, 1, decimal.NewFromInt(50))
			if tt.wantErr {
				assert.ErrorIs(t, err, domainerrors.ErrDepositLimitExceeded)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEnforcer_ExactlyAtLimitPasses(t *testing.T) {
	e := NewEnforcer(Config{Limit: decimal.NewFromInt(100)}, nil)
	store := &memStore{}

	_, err := e.CheckAndReserve(context.Background(), store, 1, 1, decimal.RequireFromString("99.99"))
	require.NoError(t, err)
	_, err = e.CheckAndReserve(context.Background(), store, 1, 1, decimal.RequireFromString("0.01"))
	require.NoError(t, err)
	_, err = e.CheckAndReserve(context.Background(), store, 1, 1, decimal.RequireFromString("0.01"))
	assert.ErrorIs(t, err, domainerrors.ErrDepositLimitExceeded)
}

func TestEnforcer_DisabledStillRecords(t *testing.T) {
	e := NewEnforcer(Config{}, nil)
	assert.False(t, e.Enabled())
	store := &memStore{}

	_, err := e.CheckAndReserve(context.Background(), store, 1, 1, decimal.NewFromInt(1_000_000))
	require.NoError(t, err)
	assert.Len(t, store.deposits, 1)
}

func TestEnforcer_InvalidAmount(t *testing.T) {
	e := NewEnforcer(Config{Limit: decimal.NewFromInt(100)}, nil)
	store := new(MockStore)

	_, err := e.CheckAndReserve(context.Background(), store, 1, 1, decimal.Zero)
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	store.AssertNotCalled(t, "LockUserDeposits", mock.Anything)
}

func TestEnforcer_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	e := NewEnforcer(Config{Limit: decimal.NewFromInt(100)}, nil)

	store := new(MockStore)
	store.On("LockUserDeposits", uint(1)).Return(nil)
	store.On("SumDepositsSince", uint(1), mock.AnythingOfType("time.Time")).Return(decimal.Zero, boom)

	_, err := e.CheckAndReserve(context.Background(), store, 1, 1, decimal.NewFromInt(10))
	assert.ErrorIs(t, err, boom)
	store.AssertNotCalled(t, "CreateCashDeposit", mock.Anything)
	store.AssertExpectations(t)
}
