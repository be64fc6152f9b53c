package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

func samplePayload() *domain.ReportPayload {
	return &domain.ReportPayload{
		Summary: "Forecast Analysis Summary\n-------------------------\nData Points Analyzed: 48",
		Filters: map[domain.Dimension]string{
			domain.DimCountry:     "Germany",
			domain.DimProductLine: "Road Bikes",
		},
		Table: []domain.ForecastPoint{
			{Period: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), Value: 1234.5, Lower: 1100, Upper: 1369},
			{Period: time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), Value: 1250, Lower: 1090, Upper: 1410},
		},
	}
}

func TestReporter_Handle(t *testing.T) {
	t.Run("renders summary and forecast table", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf)

		require.NoError(t, reporter.Handle(samplePayload()))

		out := buf.String()
		assert.Contains(t, out, "Forecast Analysis Summary")
		assert.Contains(t, out, "Data Points Analyzed: 48")
		assert.Contains(t, out, "2026-03")
		assert.Contains(t, out, "1234.50")
		assert.Contains(t, out, "| Date")
		assert.NotContains(t, out, "Analyst Narrative")
	})

	t.Run("includes the narrative section when present", func(t *testing.T) {
		var buf bytes.Buffer
		reporter := NewReporter(&buf)
		payload := samplePayload()
		payload.Narrative = "Revenue keeps climbing into spring."

		require.NoError(t, reporter.Handle(payload))

		out := buf.String()
		assert.Contains(t, out, "=== Analyst Narrative ===")
		assert.Contains(t, out, "Revenue keeps climbing into spring.")
	})
}

func TestFilename(t *testing.T) {
	t.Run("joins constrained filters in chain order", func(t *testing.T) {
		name := Filename(map[domain.Dimension]string{
			domain.DimOrganization:    "All",
			domain.DimCountry:         "Germany",
			domain.DimCity:            "New York",
			domain.DimProductLine:     "Road Bikes",
			domain.DimProductCategory: "All",
		})

		assert.Equal(t, "sales_forecast_Germany_New_York_Road_Bikes.txt", name)
	})

	t.Run("falls back to global when nothing is constrained", func(t *testing.T) {
		name := Filename(map[domain.Dimension]string{
			domain.DimCountry: "All",
		})

		assert.Equal(t, "sales_forecast_global.txt", name)
	})
}
