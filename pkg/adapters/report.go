package adapters

import (
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

const dateLayout = "2006-01-02"

func MapReportPayloadDomainToApi(p *domain.ReportPayload) api.ReportPayload {
	out := api.ReportPayload{
		Summary:     p.Summary,
		Filters:     make(map[string]string, len(p.Filters)),
		Metrics:     MapMetricsDomainToApi(p.Metrics),
		Historical:  make([]api.HistoricalPoint, 0, len(p.Historical)),
		Forecast:    make([]api.ForecastPoint, 0, len(p.Forecast)),
		Seasonality: make([]api.SeasonalityPoint, 0, len(p.Seasonality)),
		Table:       make([]api.ForecastPoint, 0, len(p.Table)),
		Charts:      MapChartsDomainToApi(p.Charts),
	}

	for dim, value := range p.Filters {
		out.Filters[dim.DisplayName()] = value
	}
	for _, h := range p.Historical {
		out.Historical = append(out.Historical, api.HistoricalPoint{
			Date:        h.Period.Format(dateLayout),
			Revenue:     h.Revenue,
			SalesAmount: h.SalesAmount,
		})
	}
	for _, f := range p.Forecast {
		out.Forecast = append(out.Forecast, MapForecastPointDomainToApi(f))
	}
	for _, s := range p.Seasonality {
		out.Seasonality = append(out.Seasonality, api.SeasonalityPoint{
			Year:    s.Year,
			Month:   int(s.Month),
			Label:   s.Month.String()[:3],
			Revenue: s.Revenue,
		})
	}
	for _, f := range p.Table {
		out.Table = append(out.Table, MapForecastPointDomainToApi(f))
	}
	if p.Narrative != "" {
		narrative := p.Narrative
		out.Explanation = &narrative
	}
	return out
}

func MapForecastPointDomainToApi(f domain.ForecastPoint) api.ForecastPoint {
	return api.ForecastPoint{
		Date:     f.Period.Format(dateLayout),
		Forecast: f.Value,
		Lower:    f.Lower,
		Upper:    f.Upper,
	}
}

func MapMetricsDomainToApi(m domain.Metrics) api.Metrics {
	return api.Metrics{
		DataPoints:         m.DataPoints,
		ForecastPeriods:    m.ForecastPeriods,
		ConfidenceInterval: m.ConfidenceInterval,
		MAPE:               m.MAPE,
		LatestHistorical:   m.LatestActual,
		LatestForecast:     m.LatestForecast,
	}
}

func MapChartsDomainToApi(c domain.ChartData) api.Charts {
	charts := api.Charts{
		Historical: make([]api.ChartRecord, 0, len(c.Historical)),
		Forecast:   make([]api.ChartRecord, 0, len(c.Forecast)),
		Seasonal:   make([]api.SeasonalChartRecord, 0, len(c.Seasonal)),
	}
	for _, p := range c.Historical {
		charts.Historical = append(charts.Historical, mapChartPoint(p))
	}
	for _, p := range c.Forecast {
		charts.Forecast = append(charts.Forecast, mapChartPoint(p))
	}
	for _, p := range c.Seasonal {
		charts.Seasonal = append(charts.Seasonal, api.SeasonalChartRecord{
			Label: p.Label,
			Year:  p.Year,
			Value: p.Value,
		})
	}
	return charts
}

func mapChartPoint(p domain.ChartPoint) api.ChartRecord {
	rec := api.ChartRecord{
		Date:   p.Date.Format(dateLayout),
		Series: p.Series,
		Value:  p.Value,
	}
	if p.HasCI {
		lower, upper := p.Lower, p.Upper
		rec.Lower = &lower
		rec.Upper = &upper
	}
	return rec
}

// MapForecastRequestApiToDomain normalizes the raw request dimensions into a
// filter selection; "All" and blanks drop out during normalization.
func MapForecastRequestApiToDomain(req api.ForecastRequest) domain.FilterSelection {
	return domain.FilterSelection{
		domain.DimOrganization:    domain.NewFilterValue(req.SalesOrg),
		domain.DimCountry:         domain.NewFilterValue(req.Country),
		domain.DimRegion:          domain.NewFilterValue(req.Region),
		domain.DimState:           domain.NewFilterValue(req.State),
		domain.DimCity:            domain.NewFilterValue(req.City),
		domain.DimProductLine:     domain.NewFilterValue(req.ProductLine),
		domain.DimProductCategory: domain.NewFilterValue(req.ProductCategory),
	}
}

// MapFilterOptionsDomainToApi maps resolved option lists onto the wire model.
func MapFilterOptionsDomainToApi(opts domain.FilterOptions) api.FilterOptions {
	return api.FilterOptions{
		SalesOrganisations: opts[domain.DimOrganization],
		Countries:          opts[domain.DimCountry],
		Regions:            opts[domain.DimRegion],
		States:             opts[domain.DimState],
		Cities:             opts[domain.DimCity],
		ProductLines:       opts[domain.DimProductLine],
		ProductCategories:  opts[domain.DimProductCategory],
	}
}
