package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sunqar/zhk-support-bot/internal/report"
	"github.com/sunqar/zhk-support-bot/internal/repository"
	"github.com/sunqar/zhk-support-bot/internal/ticket"
)

// TicketHandler exposes the ticket queue and the PDF report over HTTP, the
// same reads the bot offers in chat. Writes stay in the bot: the audit log
// needs a closing chat identity, which the API does not carry.
type TicketHandler struct {
	engine   *ticket.Engine
	exporter *report.Exporter
	pageSize int
}

func NewTicketHandler(engine *ticket.Engine, exporter *report.Exporter, pageSize int) *TicketHandler {
	return &TicketHandler{engine: engine, exporter: exporter, pageSize: pageSize}
}

// List serves GET /v1/tickets?status=open|urgent|completed&page=N.
func (h *TicketHandler) List(c echo.Context) error {
	var filter repository.QueueFilter
	switch c.QueryParam("status") {
	case "", "open":
		filter = repository.QueueOpen
	case "urgent":
		filter = repository.QueueUrgent
	case "completed":
		filter = repository.QueueCompleted
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status filter"})
	}
	pageIdx := 0
	if p := c.QueryParam("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid page"})
		}
		pageIdx = n
	}

	page, err := h.engine.Queue(c.Request().Context(), filter, pageIdx, h.pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "queue unavailable"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":    page.Items,
		"page":     page.Index,
		"pages":    page.Total,
		"has_next": page.HasNext,
	})
}

// Get serves GET /v1/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}
	t, err := h.engine.Detail(c.Request().Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket unavailable"})
	}
	return c.JSON(http.StatusOK, t)
}

// Report serves GET /v1/report.pdf?period=7|30|month.
func (h *TicketHandler) Report(c echo.Context) error {
	period := c.QueryParam("period")
	if period == "" {
		period = "7"
	}
	start, end, err := report.PeriodRange(period, time.Now())
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown period"})
	}
	data, err := h.exporter.Build(c.Request().Context(), start, end)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "report generation failed"})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="report.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", data)
}
