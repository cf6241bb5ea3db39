package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minibank/minibank/internal/container"
	handlers "github.com/minibank/minibank/internal/interface/http"
	"github.com/minibank/minibank/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIP())

	rg.POST("/signup", signLimiter, m.Handler.SignUp)
	rg.POST("/signin", signLimiter, m.Handler.SignIn)

	// Confirmation links arrive as plain GETs from mail clients.
	rg.GET("/user/confirm-email/:id", m.Handler.ConfirmEmail)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetJWT()))
	{
		auth.GET("/user/:id", m.Handler.GetByID)
		auth.GET("/user/email/:email", m.Handler.GetByEmail)
	}
}
