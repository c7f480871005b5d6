// Package httpapi exposes the service layer over HTTP: JSON endpoints for
// accounts, guilds, channels and messages, plus the realtime gateway
// upgrade, health and metrics.
package httpapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/service"
)

// base carries the dependencies every handler group shares.
type base struct {
	logger *zap.Logger
}

// HealthChecker reports storage liveness for the health endpoint.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Services bundles the service layer consumed by the HTTP surface.
type Services struct {
	Users    *service.UserService
	Guilds   *service.GuildService
	Channels *service.ChannelService
	Messages *service.MessageService
}

// Server is the HTTP front of the application.
type Server struct {
	echo   *echo.Echo
	addr   string
	logger *zap.Logger
}

// GatewayHandler serves websocket upgrade requests. Nil disables the
// gateway route.
type GatewayHandler interface {
	Handle(c echo.Context) error
}

// NewServer builds the echo application with all routes registered.
func NewServer(addr string, svcs Services, gateway GatewayHandler, health HealthChecker, logger *zap.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestLogger(logger))

	b := base{logger: logger}
	users := &userHandlers{users: svcs.Users, base: b}
	guilds := &guildHandlers{guilds: svcs.Guilds, base: b}
	channels := &channelHandlers{channels: svcs.Channels, base: b}
	messages := &messageHandlers{messages: svcs.Messages, base: b}

	authed := BearerAuth(svcs.Users, logger)

	e.POST("/user/register", users.register)
	e.POST("/user/login", users.login)
	e.POST("/user/logout", users.logout, authed)
	e.GET("/user/:username", users.getByUsername, authed)
	e.GET("/user/id/:userId", users.getByID, authed)
	e.DELETE("/user/:userId", users.delete, authed)

	e.POST("/guild/create", guilds.create, authed)
	e.GET("/guild/:guildId", guilds.get, authed)
	e.DELETE("/guild/:guildId", guilds.delete, authed)

	e.POST("/channel/:guildId/create", channels.create, authed)
	e.GET("/channel/:guildId/:channelId", channels.get, authed)
	e.DELETE("/channel/:guildId/:channelId", channels.delete, authed)

	e.POST("/message/:guildId/:channelId/create", messages.create, authed)
	e.GET("/message/:guildId/:channelId/:messageId", messages.get, authed)
	e.DELETE("/message/:guildId/:channelId/:messageId/delete", messages.delete, authed)

	if gateway != nil {
		e.GET("/gateway", gateway.Handle)
	}

	e.GET("/health", func(c echo.Context) error {
		if err := health.Health(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return &Server{echo: e, addr: addr, logger: logger}
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("http server listening", zap.String("addr", s.addr))
	return s.echo.Start(s.addr)
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the underlying http.Handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
