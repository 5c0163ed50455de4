package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/nomadhire/marketplace/internal/core/domain"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type DeveloperHandler struct {
	service ports.DeveloperService
}

func NewDeveloperHandler(service ports.DeveloperService) *DeveloperHandler {
	return &DeveloperHandler{service: service}
}

// List handles GET /developers.
//
// @Summary      List developers
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        type       query     string  false  "Developer type, case-insensitive"
// @Param        available  query     bool    false  "Availability"
// @Success      200        {object}  developersResponse
// @Failure      400        {object}  errorResponse
// @Failure      401        {object}  errorResponse
// @Failure      403        {object}  errorResponse
// @Router       /developers [get]
func (h *DeveloperHandler) List(c echo.Context) error {
	filter := ports.ListDevelopersFilter{Type: strings.TrimSpace(c.QueryParam("type"))}

	if raw := c.QueryParam("available"); raw != "" {
		available, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: available must be true or false", domain.ErrValidation)
		}
		filter.Available = &available
	}

	developers, err := h.service.ListDevelopers(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, developersResponse{Developers: developers})
}
