package management

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"drover/internal/constants"
	"drover/internal/logger"
	"drover/pkg/errors"
)

type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{service: service, logger: log}
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	{
		routes := v1.Group("/routes")
		{
			routes.GET("", h.ListRoutes)
			routes.GET("/:id", h.GetRoute)
		}

		engine := v1.Group("/engine")
		{
			engine.GET("/stats", h.EngineStats)
		}

		converter := v1.Group("/converter")
		{
			converter.GET("/stats", h.ConverterStats)
		}

		deadletters := v1.Group("/deadletters")
		{
			deadletters.GET("", h.ListDeadLetters)
			deadletters.GET("/:id", h.GetDeadLetter)
			deadletters.DELETE("/:id", h.DeleteDeadLetter)
		}
	}
}

// ListRoutes godoc
// @Summary      List hosted routes
// @Description  Get all routes hosted by this service
// @Tags         routes
// @Produce      json
// @Success      200  {array}   route.Info
// @Router       /routes [get]
func (h *Handler) ListRoutes(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListRoutes(c.Request.Context()))
}

// GetRoute godoc
// @Summary      Get a route by ID
// @Description  Get a specific hosted route by its ID
// @Tags         routes
// @Produce      json
// @Param        id   path      string  true  "Route ID"
// @Success      200  {object}  route.Info
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /routes/{id} [get]
func (h *Handler) GetRoute(c *gin.Context) {
	info, err := h.service.GetRoute(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

// EngineStats godoc
// @Summary      Engine statistics
// @Description  Point-in-time execution engine counters
// @Tags         engine
// @Produce      json
// @Success      200  {object}  engine.Stats
// @Router       /engine/stats [get]
func (h *Handler) EngineStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.EngineStats(c.Request.Context()))
}

// ConverterStats godoc
// @Summary      Converter registry statistics
// @Description  Memoization counters of the type conversion registry
// @Tags         converter
// @Produce      json
// @Success      200  {object}  ConverterStats
// @Router       /converter/stats [get]
func (h *Handler) ConverterStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ConverterStats(c.Request.Context()))
}

// ListDeadLetters godoc
// @Summary      List dead letters
// @Description  Get archived exchanges whose failures exhausted recovery
// @Tags         deadletters
// @Produce      json
// @Param        limit  query     int  false  "Maximum entries to return"
// @Success      200    {array}   deadletter.Entry
// @Failure      500    {object}  errors.ErrorResponse
// @Router       /deadletters [get]
func (h *Handler) ListDeadLetters(c *gin.Context) {
	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= constants.MaxLimit {
			limit = parsed
		}
	}

	entries, err := h.service.ListDeadLetters(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetDeadLetter godoc
// @Summary      Get a dead letter by ID
// @Description  Get one archived exchange by its ID
// @Tags         deadletters
// @Produce      json
// @Param        id   path      string  true  "Dead letter ID"
// @Success      200  {object}  deadletter.Entry
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /deadletters/{id} [get]
func (h *Handler) GetDeadLetter(c *gin.Context) {
	entry, err := h.service.GetDeadLetter(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteDeadLetter godoc
// @Summary      Delete a dead letter
// @Description  Remove one archived exchange from the store
// @Tags         deadletters
// @Param        id  path  string  true  "Dead letter ID"
// @Success      204
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /deadletters/{id} [delete]
func (h *Handler) DeleteDeadLetter(c *gin.Context) {
	if err := h.service.DeleteDeadLetter(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
