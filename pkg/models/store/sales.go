package store

import "time"

// SalesRecord is one fact-table row as returned by the sales store.
// Consumed immediately by the series builder; never cached.
type SalesRecord struct {
	DueDate         time.Time
	RevenueEUR      float64
	SalesAmount     float64
	Organization    string
	Country         string
	Region          string
	State           string
	City            string
	ProductLine     string
	ProductCategory string
}
