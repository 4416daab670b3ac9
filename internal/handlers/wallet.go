package handlers

import (
	"strconv"

	domainerrors "simex/internal/errors"
	"simex/internal/models"
	"simex/internal/services/wallet"
	"simex/internal/utils"
	"simex/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	walletService wallet.Service
}

func NewWalletHandler(walletService wallet.Service) *WalletHandler {
	return &WalletHandler{
		walletService: walletService,
	}
}

type depositRequest struct {
	UserID  uint            `json:"user_id"`
	AssetID uint            `json:"asset_id"`
	Symbol  string          `json:"symbol"`
	Amount  decimal.Decimal `json:"amount"`
}

type lockRequest struct {
	UserID  uint            `json:"user_id"`
	AssetID uint            `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
	RefType string          `json:"ref_type"`
	RefID   string          `json:"ref_id"`
}

func (h *WalletHandler) Deposit(c *fiber.Ctx) error {
	var input depositRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	balance, err := h.walletService.Deposit(c.UserContext(), input.UserID, input.AssetID, input.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

func (h *WalletHandler) DepositByCurrency(c *fiber.Ctx) error {
	var input depositRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	balance, err := h.walletService.DepositByCurrency(c.UserContext(), input.UserID, input.Symbol, input.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"balance": balance})
}

func (h *WalletHandler) LockFunds(c *fiber.Ctx) error {
	var input lockRequest
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	balance, hold, err := h.walletService.LockFundsWithHold(c.UserContext(),
		input.UserID, input.AssetID, input.Amount, input.RefType, input.RefID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"balance": balance, "hold": hold})
}

func (h *WalletHandler) ReleaseHold(c *fiber.Ctx) error {
	holdID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid hold id")
	}

	hold, err := h.walletService.ReleaseHold(c.UserContext(), holdID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"hold": hold})
}

func (h *WalletHandler) CaptureHold(c *fiber.Ctx) error {
	holdID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid hold id")
	}

	hold, err := h.walletService.CaptureHold(c.UserContext(), holdID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"hold": hold})
}

func (h *WalletHandler) GetHold(c *fiber.Ctx) error {
	holdID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid hold id")
	}

	hold, err := h.walletService.GetHold(c.UserContext(), holdID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"hold": hold})
}

func (h *WalletHandler) GetBalances(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}

	balances, err := h.walletService.GetBalances(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"balances": balances})
}

func (h *WalletHandler) ListHolds(c *fiber.Ctx) error {
	userID, err := parseUserID(c)
	if err != nil {
		return utils.BadRequest(c, "Invalid user id")
	}
	page := pagination.ParseFromRequest(c)

	holds, err := h.walletService.ListHolds(c.UserContext(), userID, wallet.HoldQuery{
		Status: models.HoldStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, pagination.Response(page, holds))
}

func parseUserID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("userId"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// respondError maps a ledger error code onto an HTTP status. Store failures
// do not leak their cause.
func respondError(c *fiber.Ctx, err error) error {
	code := domainerrors.CodeOf(err)
	switch code {
	case domainerrors.CodeInvalidInput:
		return utils.Error(c, fiber.StatusBadRequest, code, err.Error())
	case domainerrors.CodeInsufficientBalance:
		return utils.Error(c, fiber.StatusConflict, code, err.Error())
	case domainerrors.CodeDepositLimitExceeded:
		return utils.Error(c, fiber.StatusUnprocessableEntity, code, err.Error())
	case domainerrors.CodeNotFound:
		return utils.Error(c, fiber.StatusNotFound, code, err.Error())
	case domainerrors.CodeBusy:
		c.Set(fiber.HeaderRetryAfter, "1")
		return utils.Error(c, fiber.StatusServiceUnavailable, code, "balance is busy, retry later")
	default:
		return utils.InternalError(c, "Internal server error")
	}
}
