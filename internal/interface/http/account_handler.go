package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/internal/application"
	"github.com/minibank/minibank/internal/domain/entity"
	"github.com/minibank/minibank/pkg/response"
	"github.com/minibank/minibank/pkg/validation"
)

type AccountHandler struct {
	Accounts *application.AccountService
	Logger   *logrus.Logger
}

func NewAccountHandler(accounts *application.AccountService, logger *logrus.Logger) *AccountHandler {
	return &AccountHandler{Accounts: accounts, Logger: logger}
}

type amountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// GetByUserID GET /api/account/:userId
func (h *AccountHandler) GetByUserID(c *gin.Context) {
	proj, err := h.Accounts.GetByUserID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		if errors.Is(err, application.ErrAccountNotFound) {
			response.Error[any](c, http.StatusNotFound, "account not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get account failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load account", nil)
		return
	}
	response.Success(c, http.StatusOK, proj, "ok")
}

// Deposit POST /api/account/:userId/deposit
func (h *AccountHandler) Deposit(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid request body", validation.ToDetails(err))
		return
	}

	acc, err := h.Accounts.Deposit(c.Request.Context(), c.Param("userId"), req.Amount)
	if err != nil {
		h.writeLedgerError(c, err, "deposit failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"balance": acc.Balance}, "deposit applied")
}

// Withdraw POST /api/account/:userId/withdraw
func (h *AccountHandler) Withdraw(c *gin.Context) {
	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid request body", validation.ToDetails(err))
		return
	}

	acc, err := h.Accounts.Withdraw(c.Request.Context(), c.Param("userId"), req.Amount)
	if err != nil {
		h.writeLedgerError(c, err, "withdraw failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"balance": acc.Balance}, "withdrawal applied")
}

func (h *AccountHandler) writeLedgerError(c *gin.Context, err error, logMsg string) {
	switch {
	case errors.Is(err, application.ErrAccountNotFound):
		response.Error[any](c, http.StatusNotFound, "account not found", nil)
	case errors.Is(err, entity.ErrInvalidAmount):
		response.Error[any](c, http.StatusBadRequest, "amount must be positive", nil)
	case errors.Is(err, entity.ErrInsufficientBalance):
		response.Error[any](c, http.StatusUnprocessableEntity, "insufficient balance", nil)
	default:
		h.Logger.WithError(err).Error(logMsg)
		response.Error[any](c, http.StatusInternalServerError, "operation failed", nil)
	}
}
