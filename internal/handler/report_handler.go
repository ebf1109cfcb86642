package handler

import (
	"net/http"
	"time"

	"github.com/centavo/centavo-backend/internal/domain"
	"github.com/centavo/centavo-backend/internal/middleware"
	"github.com/centavo/centavo-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles report-related HTTP requests
type ReportHandler struct {
	reportService *service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetIncomeExpenseReport handles GET /api/v1/reports/income-expense
func (h *ReportHandler) GetIncomeExpenseReport(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	granularity := domain.GranularityMonth
	if v := c.QueryParam("granularity"); v != "" {
		granularity = domain.Granularity(v)
		if !domain.ValidGranularities[granularity] {
			return NewValidationError(c, "Invalid granularity", []ValidationError{
				{Field: "granularity", Message: "Must be one of: year, month, week"},
			})
		}
	}

	periodDate, verr := parsePeriodDate(c)
	if verr != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{*verr})
	}

	report, err := h.reportService.GetIncomeExpenseReport(c.Request().Context(), ownerID, periodDate, granularity)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Str("granularity", string(granularity)).Msg("Failed to build report")
		return renderResourceError(c, err, "Report")
	}

	return c.JSON(http.StatusOK, report)
}

// GetExpenseReportByCategory handles GET /api/v1/reports/expenses-by-category
func (h *ReportHandler) GetExpenseReportByCategory(c echo.Context) error {
	ownerID, ok := middleware.OwnerIDFromContext(c)
	if !ok {
		return NewUnauthorizedError(c, "Authentication required")
	}

	periodDate, verr := parsePeriodDate(c)
	if verr != nil {
		return NewValidationError(c, "Invalid date", []ValidationError{*verr})
	}

	report, err := h.reportService.GetExpenseReportByCategory(c.Request().Context(), ownerID, periodDate)
	if err != nil {
		log.Error().Err(err).Str("owner_id", ownerID.String()).Msg("Failed to build category expense report")
		return renderResourceError(c, err, "Report")
	}

	return c.JSON(http.StatusOK, report)
}

// parsePeriodDate reads the optional date query param, defaulting to today.
// Any day inside the desired period works; the service resolves the window.
func parsePeriodDate(c echo.Context) (time.Time, *ValidationError) {
	v := c.QueryParam("date")
	if v == "" {
		return time.Now().UTC(), nil
	}
	date, err := time.ParseInLocation(dateLayout, v, time.UTC)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Message: "Must be a date in YYYY-MM-DD format"}
	}
	return date, nil
}
