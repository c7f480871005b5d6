package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyvexhq/kyvexserver/internal/service"
)

type createGuildRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// guildHandlers serves guild creation, reads and deletion.
type guildHandlers struct {
	guilds *service.GuildService
	base
}

func (h *guildHandlers) create(c echo.Context) error {
	var req createGuildRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body"})
	}

	guild, err := h.guilds.Create(c.Request().Context(), currentUser(c), req.Name, req.Description)
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, guild)
}

func (h *guildHandlers) get(c echo.Context) error {
	guild, err := h.guilds.Get(c.Request().Context(), c.Param("guildId"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, guild)
}

func (h *guildHandlers) delete(c echo.Context) error {
	if err := h.guilds.Delete(c.Request().Context(), currentUser(c), c.Param("guildId")); err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
