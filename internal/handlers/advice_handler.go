package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/services"
)

type AdviceHandler struct {
	adviceService *services.AdviceService
}

func NewAdviceHandler(adviceService *services.AdviceService) *AdviceHandler {
	return &AdviceHandler{adviceService: adviceService}
}

func (h *AdviceHandler) RegisterAdviceRoutes(g *echo.Group) {
	g.POST("/advice", h.GetAdvice)
}

// GetAdvice asks the text generator for a dating suggestion
func (h *AdviceHandler) GetAdvice(c echo.Context) error {
	currentUserID, err := requireUser(c)
	if err != nil {
		return err
	}

	var req models.AdviceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	resp, err := h.adviceService.Suggest(c.Request().Context(), currentUserID, req)
	if errors.Is(err, services.ErrAdviceUnavailable) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Advice is not available right now")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to generate advice").SetInternal(err)
	}
	return c.JSON(http.StatusOK, resp)
}
