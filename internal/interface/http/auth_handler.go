package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/minibank/minibank/internal/application"
	"github.com/minibank/minibank/internal/events"
	"github.com/minibank/minibank/pkg/response"
	"github.com/minibank/minibank/pkg/validation"
)

type AuthHandler struct {
	Users  *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(users *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Users: users, Logger: logger}
}

type signUpRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type signInResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      events.UserView `json:"user"`
}

// SignUp POST /api/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid request body", validation.ToDetails(err))
		return
	}

	user, err := h.Users.SignUp(c.Request.Context(), application.SignUpInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrEmailInUse) {
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("sign up failed")
		response.Error[any](c, http.StatusInternalServerError, "could not create user", nil)
		return
	}

	response.Success(c, http.StatusCreated, events.ViewOf(user), "user created")
}

// SignIn POST /api/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid request body", validation.ToDetails(err))
		return
	}

	user, token, exp, err := h.Users.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error[any](c, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		h.Logger.WithError(err).Error("sign in failed")
		response.Error[any](c, http.StatusInternalServerError, "could not sign in", nil)
		return
	}

	response.Success(c, http.StatusOK, signInResponse{
		Token:     token,
		ExpiresAt: exp.UTC(),
		User:      events.ViewOf(user),
	}, "signed in")
}

// GetByID GET /api/user/:id
func (h *AuthHandler) GetByID(c *gin.Context) {
	view, err := h.Users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get user failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load user", nil)
		return
	}
	response.Success(c, http.StatusOK, view, "ok")
}

// GetByEmail GET /api/user/email/:email
func (h *AuthHandler) GetByEmail(c *gin.Context) {
	view, err := h.Users.GetByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).Error("get user by email failed")
		response.Error[any](c, http.StatusInternalServerError, "could not load user", nil)
		return
	}
	response.Success(c, http.StatusOK, view, "ok")
}

// ConfirmEmail GET /api/user/confirm-email/:id
// GET so the link in the confirmation email works from any mail client.
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	user, err := h.Users.ConfirmEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error[any](c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, application.ErrEmailAlreadyConfirmed):
			response.Error[any](c, http.StatusConflict, "email already confirmed", nil)
		default:
			h.Logger.WithError(err).Error("confirm email failed")
			response.Error[any](c, http.StatusInternalServerError, "could not confirm email", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, events.ViewOf(user), "email confirmed")
}
