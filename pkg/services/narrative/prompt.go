package narrative

import (
	"fmt"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

const promptSampleSize = 5

// BuildPrompt assembles the analyst briefing sent to the model. Only a small
// forecast sample goes in, never the full series.
func BuildPrompt(
	summary string,
	filters map[domain.Dimension]string,
	metrics domain.Metrics,
	points []domain.ForecastPoint,
) string {
	sample := points
	if len(sample) > promptSampleSize {
		sample = sample[:promptSampleSize]
	}

	var b strings.Builder
	b.WriteString("You are a senior business analyst. ")
	b.WriteString("Craft a concise narrative (2 short paragraphs) explaining the forecast ")
	b.WriteString("and then list the top 3 KPIs as bullets. ")
	b.WriteString("Focus on business implications, drivers, and any risks.\n\n")

	b.WriteString("Filters:\n")
	for _, dim := range domain.DimensionChain {
		if value, ok := filters[dim]; ok {
			fmt.Fprintf(&b, "- %s: %s\n", dim.DisplayName(), value)
		}
	}

	b.WriteString("Key metrics:\n")
	fmt.Fprintf(&b, "- data points: %d\n", metrics.DataPoints)
	fmt.Fprintf(&b, "- forecast periods: %d\n", metrics.ForecastPeriods)
	fmt.Fprintf(&b, "- latest actual: %.2f\n", metrics.LatestActual)
	fmt.Fprintf(&b, "- latest forecast: %.2f\n", metrics.LatestForecast)
	if metrics.MAPE != nil {
		fmt.Fprintf(&b, "- MAPE: %.2f%%\n", *metrics.MAPE)
	}

	b.WriteString("Upcoming forecast points:\n")
	for _, p := range sample {
		fmt.Fprintf(&b, "- %s: %.2f\n", p.Period.Format("2006-01"), p.Value)
	}

	b.WriteString("\nTechnical summary:\n")
	b.WriteString(summary)
	b.WriteString("\nRespond with Markdown.")

	return b.String()
}
