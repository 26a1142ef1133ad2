package setup

import (
	"time"

	"github.com/agora-forum/agora/backend/internal/handler"
	"github.com/agora-forum/agora/backend/internal/service"
	"github.com/agora-forum/agora/backend/internal/storage/pg"
	"github.com/agora-forum/agora/shared/config"
	"github.com/agora-forum/agora/shared/jwt"
	mw "github.com/agora-forum/agora/shared/middleware"
	"github.com/agora-forum/agora/shared/middleware/ratelimiter"
)

// idle limiter entries are dropped after this long
const limiterExpiration = time.Hour

var (
	_ service.SessionStorage = (*pg.Storage)(nil)
	_ service.ContentStorage = (*pg.Storage)(nil)
	_ handler.HealthChecker  = (*pg.Storage)(nil)
	_ mw.Verifier            = (*jwt.Jwt)(nil)
	_ mw.SessionResolver     = (*service.Session)(nil)
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *mw.Auth
	Jwt            jwt.JwtService
	UserLimiter    *ratelimiter.UserRateLimiter
	IPLimiter      *ratelimiter.UserRateLimiter
	Config         *config.Config
}

// SetupDependencies connects to the database (running migrations first) and
// wires every layer on top of it.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}
	deps := Wire(cfg, storage)
	deps.Storage = storage
	return deps, nil
}

// Wire builds the request path on top of any storage implementation.
func Wire(cfg *config.Config, storage interface {
	service.SessionStorage
	service.ContentStorage
	handler.HealthChecker
}) *Dependencies {
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	session := service.NewSession(storage)
	content := service.NewContent(storage)

	return &Dependencies{
		Handler:        handler.New(content, storage),
		AuthMiddleware: mw.NewAuth(jwtService, session),
		Jwt:            jwtService,
		UserLimiter:    ratelimiter.New(cfg.Public.UserRPS, cfg.Public.UserBurst, limiterExpiration),
		IPLimiter:      ratelimiter.New(cfg.Public.IpRPS, cfg.Public.IpBurst, limiterExpiration),
		Config:         cfg,
	}
}
