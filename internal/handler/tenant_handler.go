package handler

import (
	"net/http"

	"notes-service/internal/service"

	"github.com/labstack/echo/v4"
)

// TenantHandler serves plan lookup and upgrade
type TenantHandler struct {
	tenants *service.TenantService
}

// NewTenantHandler creates a tenant handler
func NewTenantHandler(tenants *service.TenantService) *TenantHandler {
	return &TenantHandler{tenants: tenants}
}

// GetPlan returns the plan of the caller's tenant
func (h *TenantHandler) GetPlan(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	plan, err := h.tenants.GetPlan(c.Request().Context(), identity, c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"plan": plan})
}

// Upgrade moves the caller's tenant to the pro plan
func (h *TenantHandler) Upgrade(c echo.Context) error {
	identity, err := identityFrom(c)
	if err != nil {
		return respondError(c, err)
	}

	plan, err := h.tenants.Upgrade(c.Request().Context(), identity, c.Param("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Company upgraded to Pro plan successfully!",
		"plan":    plan,
	})
}
