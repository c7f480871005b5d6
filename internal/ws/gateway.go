package ws

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/kyvexhq/kyvexserver/internal/models"
)

// IdentityResolver maps a bearer credential to a user. The user service
// satisfies it.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// Gateway upgrades HTTP requests into hub-registered WebSocket connections.
type Gateway struct {
	hub            *Hub
	identities     IdentityResolver
	upgrader       websocket.Upgrader
	sendBuffer     int
	maxMessageSize int64
	logger         *zap.Logger
}

// NewGateway creates a gateway serving connections through hub.
func NewGateway(hub *Hub, identities IdentityResolver, sendBuffer int, maxMessageSize int64, logger *zap.Logger) *Gateway {
	return &Gateway{
		hub:        hub,
		identities: identities,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(_ *http.Request) bool { return true },
		},
		sendBuffer:     sendBuffer,
		maxMessageSize: maxMessageSize,
		logger:         logger,
	}
}

// Handle is the echo handler for gateway connections. The credential comes
// from the token query parameter or the Authorization header; connections
// without a valid one are rejected before the upgrade.
func (g *Gateway) Handle(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		token = strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer ")
	}

	user, err := g.identities.Resolve(c.Request().Context(), token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credential")
	}

	conn, err := g.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already wrote the error response.
		g.logger.Warn("gateway upgrade failed", zap.Error(err))
		return nil
	}

	client := newClient(g.hub, conn, user.ID, g.sendBuffer, g.logger)
	if !g.hub.register(client) {
		conn.Close()
		return nil
	}

	g.logger.Info("gateway connection opened", zap.String("user_id", user.ID))

	go client.writePump()
	go client.readPump(g.maxMessageSize)

	return nil
}
