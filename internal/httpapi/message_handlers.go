package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyvexhq/kyvexserver/internal/service"
)

type createMessageRequest struct {
	Content string `json:"content"`
}

// messageHandlers serves message creation, reads and deletion.
type messageHandlers struct {
	messages *service.MessageService
	base
}

func (h *messageHandlers) create(c echo.Context) error {
	var req createMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body"})
	}

	detail, err := h.messages.Create(c.Request().Context(), currentUser(c),
		c.Param("guildId"), c.Param("channelId"), req.Content)
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, detail)
}

func (h *messageHandlers) get(c echo.Context) error {
	detail, err := h.messages.Get(c.Request().Context(), currentUser(c),
		c.Param("guildId"), c.Param("channelId"), c.Param("messageId"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, detail)
}

func (h *messageHandlers) delete(c echo.Context) error {
	err := h.messages.Delete(c.Request().Context(), currentUser(c),
		c.Param("guildId"), c.Param("channelId"), c.Param("messageId"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
