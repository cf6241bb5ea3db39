package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minibank/minibank/internal/container"
	handlers "github.com/minibank/minibank/internal/interface/http"
	"github.com/minibank/minibank/internal/interface/middleware"
)

type AccountModule struct {
	Handler *handlers.AccountHandler
}

func NewAccountModule(h *handlers.AccountHandler) *AccountModule {
	return &AccountModule{Handler: h}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetJWT()))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP()))
	{
		auth.GET("/account/:userId", m.Handler.GetByUserID)
		auth.POST("/account/:userId/deposit", m.Handler.Deposit)
		auth.POST("/account/:userId/withdraw", m.Handler.Withdraw)
	}
}
