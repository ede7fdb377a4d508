package api

import (
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/appiso/access-control/internal/api/handler"
	"github.com/appiso/access-control/internal/api/middleware"
	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// Dependencies are the services the router wires into handlers.
type Dependencies struct {
	Auth       ports.AuthService
	Employees  ports.EmployeeService
	Tokens     ports.TokenVerifier
	Authorizer ports.Authorizer

	// LoginLimiter throttles POST /login per client IP. Nil disables it.
	LoginLimiter *middleware.IPRateLimiter
	// Probes are pinged by the readiness endpoint.
	Probes []handler.Dependency
	// Now is the clock tokens are verified against. Defaults to time.Now.
	Now func() time.Time

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(middleware.Metrics())

	authHandler := handler.NewAuthHandler(deps.Auth)
	accountHandler := handler.NewAccountHandler(deps.Auth)
	employeeHandler := handler.NewEmployeeHandler(deps.Employees)
	healthHandler := handler.NewHealthHandler(deps.Probes...)

	authn := middleware.Auth(deps.Tokens, deps.Now)
	require := func(p domain.Policy) echo.MiddlewareFunc {
		return middleware.RequirePolicy(p, deps.Authorizer)
	}

	// --- Login ---
	if deps.LoginLimiter != nil {
		e.POST("/login", authHandler.Login, middleware.RateLimit(deps.LoginLimiter))
	} else {
		e.POST("/login", authHandler.Login)
	}

	// --- Authenticated routes ---
	e.GET("/me", authHandler.Me, authn, require(domain.PolicyAuthenticated))

	users := e.Group("/users", authn, require(domain.PolicyCanManageUsers))
	users.POST("", accountHandler.Create)
	users.PATCH("/:id/deactivate", accountHandler.Deactivate)

	e.GET("/employees/:id/salary", employeeHandler.GetSalary, authn, require(domain.PolicyCanViewSalaries))

	// --- Health probes (no auth required) ---
	e.GET("/health", healthHandler.Liveness)        // liveness: is the process alive?
	e.GET("/health/ready", healthHandler.Readiness) // readiness: are dependencies up?
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger logs one structured line per request with zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= 500 {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
