package setup

import (
	"github.com/authline/authline/internal/config"
	"github.com/authline/authline/internal/handler"
	"github.com/authline/authline/internal/middleware"
	"github.com/authline/authline/internal/password"
	"github.com/authline/authline/internal/service"
	"github.com/authline/authline/internal/storage/pg"
	"github.com/authline/authline/internal/token"
)

// Dependencies holds all initialized dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	hasher := password.New(cfg.Public.BcryptCost)
	signer := token.NewSigner(cfg.JwtKey(), cfg.JwtTTL())
	reset := token.NewResetManager(cfg.ResetTokenTTL())

	auth := service.NewAuth(storage, hasher, signer, reset)

	h := handler.New(auth, cfg, storage)
	authMw := middleware.NewAuth(signer)

	return &Dependencies{
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: authMw,
	}, nil
}
