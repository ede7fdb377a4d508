package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

type meResponse struct {
	User string `json:"user"`
	Role string `json:"role"`
}

// Login authenticates a user and returns a signed token.
//
// Every rejection (unknown user, wrong password, inactive or locked account)
// gets the same 401 body.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      429   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{Token: token})
}

// Me returns the identity carried by the caller's token.
//
// @Summary      Current identity
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  map[string]string
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	claims, err := ctxClaims(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{User: claims.Name, Role: claims.Role.String()})
}
