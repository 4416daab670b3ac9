package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domainerrors "simex/internal/errors"
	"simex/internal/models"
	"simex/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) Deposit(ctx context.Context, userID, assetID uint, amount decimal.Decimal) (*models.Balance, error) {
	args := m.Called(ctx, userID, assetID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockWalletService) DepositByCurrency(ctx context.Context, userID uint, symbol string, amount decimal.Decimal) (*models.Balance, error) {
	args := m.Called(ctx, userID, symbol, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockWalletService) LockFunds(ctx context.Context, userID, assetID uint, amount decimal.Decimal, refType, refID string) (*models.Balance, error) {
	args := m.Called(ctx, userID, assetID, amount, refType, refID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Balance), args.Error(1)
}

func (m *MockWalletService) LockFundsWithHold(ctx context.Context, userID, assetID uint, amount decimal.Decimal, refType, refID string) (*models.Balance, *models.Hold, error) {
	args := m.Called(ctx, userID, assetID, amount, refType, refID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.Balance), args.Get(1).(*models.Hold), args.Error(2)
}

func (m *MockWalletService) ReleaseHold(ctx context.Context, holdID uuid.UUID) (*models.Hold, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hold), args.Error(1)
}

func (m *MockWalletService) CaptureHold(ctx context.Context, holdID uuid.UUID) (*models.Hold, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hold), args.Error(1)
}

func (m *MockWalletService) GetBalances(ctx context.Context, userID uint) ([]models.Balance, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Balance), args.Error(1)
}

func (m *MockWalletService) GetHold(ctx context.Context, holdID uuid.UUID) (*models.Hold, error) {
	args := m.Called(ctx, holdID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hold), args.Error(1)
}

func (m *MockWalletService) ListHolds(ctx context.Context, userID uint, query wallet.HoldQuery) ([]models.Hold, error) {
	args := m.Called(ctx, userID, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hold), args.Error(1)
}

func newTestApp(svc wallet.Service) *fiber.App {
	app := fiber.New()
	h := NewWalletHandler(svc)

	api := app.Group("/api/wallet")
	api.Post("/deposits", h.Deposit)
	api.Post("/deposits/currency", h.DepositByCurrency)
	api.Post("/holds", h.LockFunds)
	api.Get("/holds/:id", h.GetHold)
	api.Post("/holds/:id/release", h.ReleaseHold)
	api.Post("/holds/:id/capture", h.CaptureHold)
	api.Get("/users/:userId/balances", h.GetBalances)
	api.Get("/users/:userId/holds", h.ListHolds)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestWalletHandler_Deposit(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)

	svc.On("Deposit", mock.Anything, uint(1), uint(2), decimal.RequireFromString("100.5")).
		Return(&models.Balance{UserID: 1, AssetID: 2, Available: models.NewAmount(decimal.RequireFromString("100.5"))}, nil)

	status, body := doRequest(t, app, http.MethodPost, "/api/wallet/deposits",
		`{"user_id":1,"asset_id":2,"amount":"100.5"}`)

	assert.Equal(t, http.StatusOK, status)
	balance := body["balance"].(map[string]interface{})
	assert.Equal(t, "100.5", balance["available"])
	svc.AssertExpectations(t)
}

func TestWalletHandler_DepositByCurrencyLimitExceeded(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)

	svc.On("DepositByCurrency", mock.Anything, uint(1), "USD", decimal.NewFromInt(2000)).
		Return(nil, domainerrors.ErrDepositLimitExceeded.Withf("limit 10000"))

	status, body := doRequest(t, app, http.MethodPost, "/api/wallet/deposits/currency",
		`{"user_id":1,"symbol":"USD","amount":2000}`)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, domainerrors.CodeDepositLimitExceeded, body["code"])
	svc.AssertExpectations(t)
}

func TestWalletHandler_LockFundsCreated(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)

	hold := &models.Hold{ID: uuid.New(), UserID: 1, AssetID: 2, Amount: models.NewAmount(decimal.NewFromInt(5)),
		RefType: "ORDER", RefID: "o-1", Status: models.HoldStatusActive}
	svc.On("LockFundsWithHold", mock.Anything, uint(1), uint(2), decimal.NewFromInt(5), "ORDER", "o-1").
		Return(&models.Balance{UserID: 1, AssetID: 2}, hold, nil)

	status, body := doRequest(t, app, http.MethodPost, "/api/wallet/holds",
		`{"user_id":1,"asset_id":2,"amount":"5","ref_type":"ORDER","ref_id":"o-1"}`)

	assert.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body, "balance")
	got := body["hold"].(map[string]interface{})
	assert.Equal(t, hold.ID.String(), got["id"])
	svc.AssertExpectations(t)
}

func TestWalletHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid", domainerrors.ErrInvalidAmount, http.StatusBadRequest, domainerrors.CodeInvalidInput},
		{"insufficient", domainerrors.ErrInsufficientBalance, http.StatusConflict, domainerrors.CodeInsufficientBalance},
		{"not found", domainerrors.ErrHoldNotFound, http.StatusNotFound, domainerrors.CodeNotFound},
		{"busy", domainerrors.ErrBusy, http.StatusServiceUnavailable, domainerrors.CodeBusy},
		{"store", domainerrors.ErrStoreFailure.Wrap(io.ErrUnexpectedEOF), http.StatusInternalServerError, domainerrors.CodeStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockWalletService)
			app := newTestApp(svc)
			holdID := uuid.New()
			svc.On("ReleaseHold", mock.Anything, holdID).Return(nil, tt.err)

			status, body := doRequest(t, app, http.MethodPost, "/api/wallet/holds/"+holdID.String()+"/release", "")

			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body["code"])
			assert.NotContains(t, body["error"], "unexpected EOF")
		})
	}
}

func TestWalletHandler_BusySetsRetryAfter(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)
	holdID := uuid.New()
	svc.On("CaptureHold", mock.Anything, holdID).Return(nil, domainerrors.ErrBusy)

	req := httptest.NewRequest(http.MethodPost, "/api/wallet/holds/"+holdID.String()+"/capture", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get(fiber.HeaderRetryAfter))
}

func TestWalletHandler_BadPathParams(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)

	status, body := doRequest(t, app, http.MethodGet, "/api/wallet/holds/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, domainerrors.CodeInvalidInput, body["code"])

	status, _ = doRequest(t, app, http.MethodGet, "/api/wallet/users/abc/balances", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = doRequest(t, app, http.MethodPost, "/api/wallet/deposits", `{"user_id":`)
	assert.Equal(t, http.StatusBadRequest, status)

	svc.AssertNotCalled(t, "GetHold", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "GetBalances", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "Deposit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletHandler_GetBalances(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)

	svc.On("GetBalances", mock.Anything, uint(7)).Return([]models.Balance{
		{UserID: 7, AssetID: 1, Available: models.NewAmount(decimal.NewFromInt(3))},
		{UserID: 7, AssetID: 2, Available: models.NewAmount(decimal.NewFromInt(4))},
	}, nil)

	status, body := doRequest(t, app, http.MethodGet, "/api/wallet/users/7/balances", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["balances"], 2)
	svc.AssertExpectations(t)
}

func TestWalletHandler_ListHoldsPaging(t *testing.T) {
	svc := new(MockWalletService)
	app := newTestApp(svc)

	svc.On("ListHolds", mock.Anything, uint(3), wallet.HoldQuery{
		Status: models.HoldStatusActive,
		Limit:  10,
		Offset: 20,
	}).Return([]models.Hold{{ID: uuid.New(), UserID: 3}}, nil)

	status, body := doRequest(t, app, http.MethodGet, "/api/wallet/users/3/holds?status=ACTIVE&page=3&limit=10", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 1)
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, float64(3), meta["current_page"])
	assert.Equal(t, float64(10), meta["per_page"])
	svc.AssertExpectations(t)
}
