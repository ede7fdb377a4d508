package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/appiso/access-control/internal/core/ports"
)

type EmployeeHandler struct {
	service ports.EmployeeService
}

func NewEmployeeHandler(service ports.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

type salaryResponse struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Salary float64 `json:"salary"`
}

// GetSalary handles GET /employees/:id/salary.
//
// @Summary      Get an employee's salary
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Employee id"
// @Success      200  {object}  salaryResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /employees/{id}/salary [get]
func (h *EmployeeHandler) GetSalary(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "employee not found"})
	}

	employee, err := h.service.GetSalary(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, salaryResponse{
		ID:     employee.ID,
		Name:   employee.Name,
		Salary: employee.Salary,
	})
}
