package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kyvexhq/kyvexserver/internal/service"
)

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User  any    `json:"user"`
	Token string `json:"token"`
}

// userHandlers serves account registration, sessions and user reads.
type userHandlers struct {
	users *service.UserService
	base
}

func (h *userHandlers) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body"})
	}

	user, token, err := h.users.Register(c.Request().Context(), req.Username, req.DisplayName, req.Password)
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusCreated, sessionResponse{User: user, Token: token})
}

func (h *userHandlers) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "malformed request body"})
	}

	user, token, err := h.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, sessionResponse{User: user, Token: token})
}

func (h *userHandlers) logout(c echo.Context) error {
	actor := currentUser(c)

	if err := h.users.Logout(c.Request().Context(), actor.ID); err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *userHandlers) getByUsername(c echo.Context) error {
	user, err := h.users.GetByUsername(c.Request().Context(), currentUser(c), c.Param("username"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *userHandlers) getByID(c echo.Context) error {
	user, err := h.users.GetByID(c.Request().Context(), currentUser(c), c.Param("userId"))
	if err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *userHandlers) delete(c echo.Context) error {
	if err := h.users.Delete(c.Request().Context(), currentUser(c), c.Param("userId")); err != nil {
		return respondErr(c, h.logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
