package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

type TableConfig struct {
	DateWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		DateWidth:  12,
		ValueWidth: 16,
	}
}

// Reporter renders a ReportPayload as a plain-text document.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

func (r *Reporter) Handle(payload *domain.ReportPayload) error {
	funcMap := template.FuncMap{
		"formatRow": func(date string, forecast, lower, upper interface{}) string {
			return fmt.Sprintf("| %-*s | %*v | %*v | %*v |",
				r.config.DateWidth, date,
				r.config.ValueWidth, forecast,
				r.config.ValueWidth, lower,
				r.config.ValueWidth, upper)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+",
				strings.Repeat("-", r.config.DateWidth+2),
				strings.Repeat("-", r.config.ValueWidth+2),
				strings.Repeat("-", r.config.ValueWidth+2),
				strings.Repeat("-", r.config.ValueWidth+2))
		},
		"money": func(v float64) string {
			return fmt.Sprintf("%.2f", v)
		},
		"month": func(p time.Time) string {
			return p.Format("2006-01")
		},
	}

	tmpl := `{{.Summary}}

{{separator}}
{{formatRow "Date" "Forecast" "Lower" "Upper"}}
{{separator}}
{{range .Table}}{{formatRow (month .Period) (money .Value) (money .Lower) (money .Upper)}}
{{end}}{{separator}}
{{if .Narrative}}
=== Analyst Narrative ===

{{.Narrative}}
{{end}}`

	t, err := template.New("report").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(r.writer, payload)
}

// Filename derives the export file name from the constrained filters,
// falling back to "global" when everything is "All".
func Filename(filters map[domain.Dimension]string) string {
	var parts []string
	for _, dim := range domain.DimensionChain {
		value := filters[dim]
		if value == "" || value == "All" {
			continue
		}
		parts = append(parts, strings.ReplaceAll(value, " ", "_"))
	}
	suffix := "global"
	if len(parts) > 0 {
		suffix = strings.Join(parts, "_")
	}
	return fmt.Sprintf("sales_forecast_%s.txt", suffix)
}
