package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyvexhq/kyvexserver/internal/models"
	"github.com/kyvexhq/kyvexserver/internal/service"
)

type createChannelRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// channelHandlers serves channel creation, reads and deletion.
type channelHandlers struct {
	channels *service.ChannelService
	base
}

func (h *channelHandlers) create(c echo.Context) error {
	var req createChannelRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body"})
	}

	channel, err := h.channels.Create(c.Request().Context(), currentUser(c),
		c.Param("guildId"), req.Name, req.Description, models.ChannelType(req.Type))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, channel)
}

func (h *channelHandlers) get(c echo.Context) error {
	detail, err := h.channels.Get(c.Request().Context(), currentUser(c),
		c.Param("guildId"), c.Param("channelId"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, detail)
}

func (h *channelHandlers) delete(c echo.Context) error {
	err := h.channels.Delete(c.Request().Context(), currentUser(c),
		c.Param("guildId"), c.Param("channelId"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
