// Package router assembles the echo instance: global middleware, the public
// /users routes and the authenticated /users/profile, /days and /tasks
// groups.
package router

import (
	"database/sql"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/timetracker/internal/config"
	"github.com/iliyamo/timetracker/internal/handler"
	"github.com/iliyamo/timetracker/internal/middleware"
	"github.com/iliyamo/timetracker/internal/repository"
	"github.com/iliyamo/timetracker/internal/service"
)

// Options carries the optional collaborators.  A nil Redis turns rate
// limiting and caching into no-ops; a nil Publisher drops activity events.
type Options struct {
	Redis     *redis.Client
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Publisher service.Publisher
	// RequestLog enables echo's request logger.
	RequestLog bool
}

// New builds the HTTP API on top of db.
func New(cfg config.Config, db *sql.DB, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()

	e.Use(echomw.Recover())
	if opts.RequestLog {
		e.Use(echomw.Logger())
	}
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	users := repository.NewUserRepo(db)
	days := repository.NewDayRepo(db)
	tasks := repository.NewTaskRepo(db)

	RegisterRoutes(e)
	RegisterUsers(e, handler.NewAuthHandler(cfg, users), cfg.JWTSecret, opts)

	RegisterDays(e.Group("/days", protected(cfg.JWTSecret, opts)...), handler.NewDayHandler(cfg, days, tasks, opts.Publisher))
	RegisterTasks(e.Group("/tasks", protected(cfg.JWTSecret, opts)...), handler.NewTaskHandler(cfg, days, tasks, opts.Publisher))
	return e
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Banner)
	e.GET("/healthz", handler.Health)
}

// RegisterUsers mounts signup and login behind the smaller auth bucket, and
// the profile behind JWTAuth.
func RegisterUsers(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, opts Options) {
	g := e.Group("/users")
	limited := middleware.NewTokenBucket(opts.RateLimit.ForAuth(), opts.Redis)
	g.POST("/signup", a.Signup, limited)
	g.POST("/login", a.Login, limited)
	g.GET("/profile", a.Profile, middleware.JWTAuth(jwtSecret), middleware.NewTokenBucket(opts.RateLimit, opts.Redis))
}

// protected is the middleware chain of the /days and /tasks groups: JWTAuth,
// then the rate limiter, then the per-user cache.
func protected(jwtSecret string, opts Options) []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{
		middleware.JWTAuth(jwtSecret),
		middleware.NewTokenBucket(opts.RateLimit, opts.Redis),
		middleware.NewUserCache(opts.Cache, opts.Redis),
	}
}
