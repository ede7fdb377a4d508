package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/core/domain"
	"github.com/appiso/access-control/internal/core/ports"
)

// AccountHandler serves account administration. Routes are mounted behind
// the CanManageUsers policy.
type AccountHandler struct {
	authService ports.AuthService
}

func NewAccountHandler(authService ports.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

type createAccountRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,role"`
}

type accountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Create registers a new active account.
//
// @Summary      Create an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /users [post]
func (h *AccountHandler) Create(c echo.Context) error {
	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	summary, err := h.authService.CreateAccount(c.Request().Context(), req.Username, req.Password, domain.Role(req.Role))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, accountResponse{
		ID:       summary.ID,
		Username: summary.Username,
		Role:     summary.Role.String(),
	})
}

// Deactivate marks an account inactive. Its existing tokens stay valid
// until they expire; new logins are refused.
//
// @Summary      Deactivate an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Account id"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{id}/deactivate [patch]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	id := c.Param("id")
	if err := h.authService.DeactivateAccount(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "account deactivated"})
}
