package bayesnet

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/periop/periop/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/network", h.GetNetworkStructure)
	api.GET("/network/:variable", h.GetNode)
	api.GET("/complications", h.ListComplications)
	api.GET("/risk-factors", h.ListRiskFactors)
	api.POST("/assessments", h.AssessAllComplications)
	api.POST("/assessments/query", h.QueryComplication)
	api.POST("/assessments/exact", h.ExactQuery)
	api.POST("/observations", h.RecordObservation)
	api.GET("/observations", h.ListObservations)
	api.GET("/observations/stats", h.GetObservationStats)
	api.DELETE("/learning", h.ResetLearning)
}

type queryRequest struct {
	Complication NodeVariable `json:"complication"`
	Evidence     []Evidence   `json:"evidence"`
}

type assessRequest struct {
	Evidence []Evidence `json:"evidence"`
}

type exactRequest struct {
	Variable NodeVariable `json:"variable"`
	Evidence []Evidence   `json:"evidence"`
}

type observationRequest struct {
	Evidence     []Evidence   `json:"evidence"`
	Complication NodeVariable `json:"complication"`
	Occurred     bool         `json:"occurred"`
}

func (h *Handler) GetNetworkStructure(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetNetworkStructure())
}

func (h *Handler) GetNode(c echo.Context) error {
	node := h.svc.GetNode(NodeVariable(c.Param("variable")))
	if node == nil {
		return echo.NewHTTPError(http.StatusNotFound, "unknown variable")
	}
	return c.JSON(http.StatusOK, node)
}

func (h *Handler) ListComplications(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetComplications())
}

func (h *Handler) ListRiskFactors(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetRiskFactors())
}

func (h *Handler) AssessAllComplications(c echo.Context) error {
	var req assessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h.svc.QueryAllComplications(req.Evidence))
}

func (h *Handler) QueryComplication(c echo.Context) error {
	var req queryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Complication == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "complication is required")
	}
	return c.JSON(http.StatusOK, h.svc.QueryComplication(req.Complication, req.Evidence))
}

func (h *Handler) ExactQuery(c echo.Context) error {
	var req exactRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Variable == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "variable is required")
	}
	return c.JSON(http.StatusOK, h.svc.VariableElimination(req.Variable, req.Evidence))
}

func (h *Handler) RecordObservation(c echo.Context) error {
	var req observationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	record, err := h.svc.RecordObservation(c.Request().Context(), req.Evidence, req.Complication, req.Occurred)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, record)
}

func (h *Handler) ListObservations(c echo.Context) error {
	params := pagination.FromContext(c)
	records := h.svc.GetObservations()
	total := len(records)

	start := params.Offset
	if start > total {
		start = total
	}
	end := start + params.Limit
	if end > total {
		end = total
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records[start:end], total, params.Limit, params.Offset))
}

func (h *Handler) GetObservationStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.GetObservationStats())
}

func (h *Handler) ResetLearning(c echo.Context) error {
	h.svc.ResetLearning(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
