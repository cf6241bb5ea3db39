package router

import (
	"github.com/minibank/minibank/internal/application"
	"github.com/minibank/minibank/internal/container"
	"github.com/minibank/minibank/internal/events"
	pginfra "github.com/minibank/minibank/internal/infrastructure/postgres"
	handlers "github.com/minibank/minibank/internal/interface/http"
	"github.com/minibank/minibank/internal/router/modules"
)

// InitAuthModules wires the identity routes from the container singletons.
// Called once during auth service startup.
func InitAuthModules(r *Registry) {
	repo := pginfra.NewUserRepository(container.GetPGPool())
	pub := events.NewIdentityPublisher(container.GetBroker(), container.GetLogger())
	svc := application.NewUserService(repo, container.GetCache(), pub, container.GetJWT(), container.GetLogger())
	h := handlers.NewAuthHandler(svc, container.GetLogger())
	r.Add(modules.NewAuthModule(h))
}

// InitBankModules wires the ledger routes from the container singletons.
func InitBankModules(r *Registry) {
	repo := pginfra.NewAccountRepository(container.GetPGPool())
	pub := events.NewLedgerPublisher(container.GetBroker(), container.GetLogger())
	svc := application.NewAccountService(repo, container.GetCache(), pub, container.GetLogger())
	h := handlers.NewAccountHandler(svc, container.GetLogger())
	r.Add(modules.NewAccountModule(h))
}
