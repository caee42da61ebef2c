package api

import (
	"errors"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/internal/handlers"
	"github.com/charlesng35/accountd/internal/middleware"
	"github.com/charlesng35/accountd/internal/monitoring"
	"github.com/charlesng35/accountd/internal/services"
	"github.com/charlesng35/accountd/internal/store"
)

// Deps are the collaborators the router wires into handlers.
type Deps struct {
	Stores      *store.Registry
	JWT         *iauth.JWTService
	Revocations *iauth.Revocations
	Accounts    *services.AccountService
	Directory   *services.DirectoryService
	Health      *monitoring.HealthManager
}

func (d Deps) validate() error {
	switch {
	case d.Stores == nil:
		return errors.New("router: store registry must be provided")
	case d.JWT == nil:
		return errors.New("router: jwt service must be provided")
	case d.Revocations == nil:
		return errors.New("router: revocation registry must be provided")
	case d.Accounts == nil:
		return errors.New("router: account service must be provided")
	}
	return nil
}

// NewRouter builds the Gin engine, wires middleware and registers every route.
func NewRouter(deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.Directory == nil {
		deps.Directory = services.NewDirectoryService()
	}
	if deps.Health == nil {
		deps.Health = monitoring.NewHealthManager()
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())
	r.Use(middleware.SecurityHeaders())

	registerHealthRoutes(r, deps.Health)
	registerDocsRoutes(r)

	registerAccountRoutes(r, handlers.NewAccountHandler(deps.Stores, deps.Accounts))

	requireAuth := middleware.Auth(deps.JWT, deps.Revocations)
	registerUserRoutes(r, requireAuth, handlers.NewUserHandler(deps.Stores, deps.Directory))

	// NotFound fallback
	r.NoRoute(middleware.NotFoundHandler)

	return r, nil
}
