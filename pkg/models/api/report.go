package api

// ForecastRequest is the transport-level forecast request body.
// Blank dimension values and the literal "All" both mean "no constraint".
type ForecastRequest struct {
	SalesOrg           string  `json:"sales_org,omitempty"`
	Country            string  `json:"country,omitempty"`
	Region             string  `json:"region,omitempty"`
	State              string  `json:"state,omitempty"`
	City               string  `json:"city,omitempty"`
	ProductLine        string  `json:"product_line,omitempty"`
	ProductCategory    string  `json:"product_category,omitempty"`
	ForecastPeriods    int     `json:"forecast_periods"`
	ConfidenceInterval float64 `json:"confidence_interval"`
}

// FilterOptions lists the valid dropdown values per dimension,
// each list led by the "All" sentinel.
type FilterOptions struct {
	SalesOrganisations []string `json:"sales_organisations"`
	Countries          []string `json:"countries"`
	Regions            []string `json:"regions"`
	States             []string `json:"states"`
	Cities             []string `json:"cities"`
	ProductLines       []string `json:"product_lines"`
	ProductCategories  []string `json:"product_categories"`
}

type HistoricalPoint struct {
	Date        string  `json:"date"`
	Revenue     float64 `json:"revenue"`
	SalesAmount float64 `json:"sales_amount"`
}

type ForecastPoint struct {
	Date     string  `json:"date"`
	Forecast float64 `json:"forecast"`
	Lower    float64 `json:"lower"`
	Upper    float64 `json:"upper"`
}

type SeasonalityPoint struct {
	Year    int     `json:"year"`
	Month   int     `json:"month"`
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

// Metrics mirrors domain.Metrics for serialization. MAPE stays a pointer so
// an undefined score serializes as null, never as 0.
type Metrics struct {
	DataPoints         int      `json:"data_points"`
	ForecastPeriods    int      `json:"forecast_periods"`
	ConfidenceInterval float64  `json:"confidence_interval"`
	MAPE               *float64 `json:"mape"`
	LatestHistorical   float64  `json:"latest_historical"`
	LatestForecast     float64  `json:"latest_forecast"`
}

// ChartRecord is one row of a chart dataset. Confidence bounds are only
// present on forecast rows.
type ChartRecord struct {
	Date   string   `json:"date"`
	Series string   `json:"series"`
	Value  float64  `json:"value"`
	Lower  *float64 `json:"lower,omitempty"`
	Upper  *float64 `json:"upper,omitempty"`
}

type SeasonalChartRecord struct {
	Label string  `json:"label"`
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

type Charts struct {
	Historical []ChartRecord         `json:"historical"`
	Forecast   []ChartRecord         `json:"forecast"`
	Seasonal   []SeasonalChartRecord `json:"seasonal"`
}

// ReportPayload is the wire form of a complete forecast report.
type ReportPayload struct {
	Summary     string             `json:"summary"`
	Filters     map[string]string  `json:"filters"`
	Metrics     Metrics            `json:"metrics"`
	Historical  []HistoricalPoint  `json:"historical_series"`
	Forecast    []ForecastPoint    `json:"forecast_series"`
	Seasonality []SeasonalityPoint `json:"seasonality_series"`
	Table       []ForecastPoint    `json:"forecast_table"`
	Charts      Charts             `json:"charts"`
	Explanation *string            `json:"explanation"`
}

// ErrorResponse is the uniform error body for the reports API.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
