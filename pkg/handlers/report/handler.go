package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/export"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/filters"
	"github.com/de-tools/sales-atlas/pkg/services/report"
)

type Handler struct {
	resolver   filters.Resolver
	controller report.Controller
}

func NewHandler(resolver filters.Resolver, controller report.Controller) *Handler {
	return &Handler{
		resolver:   resolver,
		controller: controller,
	}
}

// GetFilters resolves the cascading dropdown options for the current
// selection, passed as query parameters.
func (h *Handler) GetFilters(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	sel := selectionFromQuery(r)
	options, err := h.resolver.ResolveOptions(ctx, sel)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapFilterOptionsDomainToApi(options)); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode filter options")
	}
}

// GenerateForecast runs the full report pipeline and returns the JSON payload.
func (h *Handler) GenerateForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	payload, err := h.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(adapters.MapReportPayloadDomainToApi(payload)); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to encode report payload")
	}
}

// ExportForecast runs the same pipeline and streams the plain-text report
// document as a download.
func (h *Handler) ExportForecast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	payload, err := h.generate(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(payload.Filters)))
	if err := export.NewReporter(w).Handle(payload); err != nil {
		logger.Error().
			Err(err).
			Msg("failed to render report document")
	}
}

func (h *Handler) generate(r *http.Request) (*domain.ReportPayload, error) {
	var req api.ForecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, &domain.InvalidSelectionError{Reason: "malformed request body"}
	}

	return h.controller.GenerateReport(r.Context(), report.Request{
		Selection:  adapters.MapForecastRequestApiToDomain(req),
		Periods:    req.ForecastPeriods,
		Confidence: req.ConfidenceInterval,
	})
}

func selectionFromQuery(r *http.Request) domain.FilterSelection {
	query := r.URL.Query()
	return domain.FilterSelection{
		domain.DimOrganization:    domain.NewFilterValue(query.Get("sales_org")),
		domain.DimCountry:         domain.NewFilterValue(query.Get("country")),
		domain.DimRegion:          domain.NewFilterValue(query.Get("region")),
		domain.DimState:           domain.NewFilterValue(query.Get("state")),
		domain.DimCity:            domain.NewFilterValue(query.Get("city")),
		domain.DimProductLine:     domain.NewFilterValue(query.Get("product_line")),
		domain.DimProductCategory: domain.NewFilterValue(query.Get("product_category")),
	}
}

// writeError maps domain errors onto transport codes. Client mistakes keep
// their message; storage and model internals never leave the service.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	status := http.StatusInternalServerError
	detail := "internal server error"

	var invalidErr *domain.InvalidSelectionError
	var insufficientErr *domain.InsufficientDataError
	var accessErr *domain.DataAccessError
	var fitErr *domain.ModelFitError

	switch {
	case errors.As(err, &invalidErr), errors.As(err, &insufficientErr):
		status = http.StatusBadRequest
		detail = err.Error()
	case errors.As(err, &accessErr):
		detail = "unable to access sales data"
	case errors.As(err, &fitErr):
		detail = "forecast unavailable for the selected data"
	}

	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Msg("report request failed")
	} else {
		logger.Warn().Err(err).Msg("report request rejected")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(api.ErrorResponse{Detail: detail}); err != nil {
		logger.Error().Err(err).Msg("failed to encode error response")
	}
}
