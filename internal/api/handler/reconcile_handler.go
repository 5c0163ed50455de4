package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/nomadhire/marketplace/internal/api/metrics"
	"github.com/nomadhire/marketplace/internal/core/ports"
)

type ReconcileHandler struct {
	reconciler ports.Reconciler
}

func NewReconcileHandler(reconciler ports.Reconciler) *ReconcileHandler {
	return &ReconcileHandler{reconciler: reconciler}
}

// Run handles POST /admin/reconcile.
//
// @Summary      Repair developer availability for approved projects
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ports.ReconcileReport
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /admin/reconcile [post]
func (h *ReconcileHandler) Run(c echo.Context) error {
	report, err := h.reconciler.Run(c.Request().Context())
	metrics.ObserveReconcile(report.Repaired, err)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}
